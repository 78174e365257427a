package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/outbox"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

const (
	listHostBookingsKey  = "host.bookings.list"
	createHostBookingKey = "host.bookings.create"
	setBookingStatusKey  = "host.bookings.set_status"
	removeBookingKey     = "host.bookings.remove"
)

var ErrBookingNotOwned = errors.New("booking: not owned by host")

type ListHostBookingsQuery struct {
	HostID string
	Status string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.HostBookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.HostBookingCollection{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var status domainbooking.Status
	if raw := strings.TrimSpace(q.Status); raw != "" {
		status, err = domainbooking.ParseStatus(raw)
		if err != nil {
			return dto.HostBookingCollection{}, err
		}
	}

	bookings, err := unit.Bookings().ListByHostAndStatus(execCtx, domainproperty.HostID(hostID), status)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.MapBookingSummary(b, lookupProperty(execCtx, unit, b.PropertyID)))
	}

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "count", len(items), "status", q.Status)
	}
	return dto.HostBookingCollection{Items: items}, nil
}

// PasswordHasher mirrors the auth service dependency; host manual entry needs
// it to provision guest accounts.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type CreateHostBookingCommand struct {
	CommandID    string
	HostID       string
	PropertyID   string
	GuestName    string
	GuestEmail   string
	GuestPhone   string
	CheckIn      time.Time
	CheckOut     time.Time
	Rooms        int
	Adults       int
	Children     int
	Payment      string
	CardLastFour string
}

func (c CreateHostBookingCommand) Key() string { return createHostBookingKey }

func (c CreateHostBookingCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return ErrPropertyIDRequired
	}
	if strings.TrimSpace(c.GuestEmail) == "" || strings.TrimSpace(c.GuestName) == "" {
		return domainbooking.ErrGuestNameMissing
	}
	if c.Adults <= 0 {
		return domainbooking.ErrInvalidGuests
	}
	return nil
}

type CreateHostBookingHandler struct {
	Fees      pricing.FeePolicy
	Passwords PasswordHasher
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Logger    *slog.Logger
}

// Handle records a booking the host took over the phone or walk-in. The guest
// gets an account keyed by email when one does not exist yet.
func (h *CreateHostBookingHandler) Handle(ctx context.Context, cmd CreateHostBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if !prop.BelongsTo(domainproperty.HostID(cmd.HostID)) {
		return nil, ErrBookingNotOwned
	}

	stay, err := domainbooking.NewStay(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	payment, err := domainbooking.ParsePaymentMethod(cmd.Payment)
	if err != nil {
		return nil, err
	}
	price, err := pricing.Quote(prop.NightlyRate, stay.Nights(), h.Fees)
	if err != nil {
		return nil, err
	}

	guest, err := h.ensureGuestUser(ctx, unit, cmd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		PropertyID: prop.ID,
		GuestID:    string(guest.ID),
		Guest: domainbooking.GuestDetails{
			Name:  strings.TrimSpace(cmd.GuestName),
			Email: domainuser.NormalizeEmail(cmd.GuestEmail),
			Phone: strings.TrimSpace(cmd.GuestPhone),
		},
		Rooms:        cmd.Rooms,
		Adults:       cmd.Adults,
		Children:     cmd.Children,
		Stay:         stay,
		Price:        price,
		Payment:      payment,
		CardLastFour: cmd.CardLastFour,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host booking created", "booking_id", booking.ID, "host_id", cmd.HostID, "property_id", prop.ID)
	}
	return &RequestBookingResult{
		BookingID: string(booking.ID),
		Status:    string(booking.Status),
		Price:     mapPriceSummary(booking.Price),
	}, nil
}

func (h *CreateHostBookingHandler) ensureGuestUser(ctx context.Context, unit uow.UnitOfWork, cmd CreateHostBookingCommand) (*domainuser.User, error) {
	email := domainuser.NormalizeEmail(cmd.GuestEmail)
	existing, err := unit.Users().ByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	if h.Passwords == nil {
		return nil, errors.New("booking: password hasher required to provision guests")
	}
	// The guest never chose a password; hash a throwaway secret so the account
	// stays locked until a reset.
	hash, err := h.Passwords.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	created, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         cmd.GuestName,
		Phone:        cmd.GuestPhone,
		PasswordHash: hash,
		Roles:        []domainuser.Role{domainuser.RoleGuest},
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (h *CreateHostBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

type SetBookingStatusCommand struct {
	HostID    string
	BookingID string
	Status    string
}

func (c SetBookingStatusCommand) Key() string { return setBookingStatusKey }

type BookingActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type SetBookingStatusHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *SetBookingStatusHandler) Handle(ctx context.Context, cmd SetBookingStatusCommand) (*BookingActionResult, error) {
	booking, err := loadOwnedBooking(ctx, cmd.HostID, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	unit, _ := uow.FromContext(ctx)

	status, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	if err := booking.SetStatus(status, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking status set", "booking_id", booking.ID, "host_id", cmd.HostID, "status", status)
	}
	return &BookingActionResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}

type RemoveBookingCommand struct {
	HostID    string
	BookingID string
}

func (c RemoveBookingCommand) Key() string { return removeBookingKey }

type RemoveBookingHandler struct {
	Logger *slog.Logger
}

func (h *RemoveBookingHandler) Handle(ctx context.Context, cmd RemoveBookingCommand) (*BookingActionResult, error) {
	booking, err := loadOwnedBooking(ctx, cmd.HostID, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	unit, _ := uow.FromContext(ctx)
	if err := unit.Bookings().Delete(ctx, booking.ID); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking removed", "booking_id", booking.ID, "host_id", cmd.HostID)
	}
	return &BookingActionResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}

// loadOwnedBooking fetches the booking and verifies the property belongs to
// the acting host.
func loadOwnedBooking(ctx context.Context, hostID, bookingID string) (*domainbooking.Booking, error) {
	hostID = strings.TrimSpace(hostID)
	if hostID == "" {
		return nil, errors.New("host id is required")
	}
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, errors.New("booking id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	prop, err := unit.Properties().ByID(ctx, booking.PropertyID)
	if err != nil {
		return nil, err
	}
	if !prop.BelongsTo(domainproperty.HostID(hostID)) {
		return nil, ErrBookingNotOwned
	}
	return booking, nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.HostBookingCollection] = (*ListHostBookingsHandler)(nil)
var _ commands.Handler[CreateHostBookingCommand, *RequestBookingResult] = (*CreateHostBookingHandler)(nil)
var _ commands.Handler[SetBookingStatusCommand, *BookingActionResult] = (*SetBookingStatusHandler)(nil)
var _ commands.Handler[RemoveBookingCommand, *BookingActionResult] = (*RemoveBookingHandler)(nil)
