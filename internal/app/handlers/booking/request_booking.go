package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/middleware"
	"staymarket/internal/app/outbox"
	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
)

const requestBookingKey = "booking.request"

var (
	ErrUnitOfWorkRequired  = errors.New("booking: unit of work required")
	ErrPropertyNotBookable = errors.New("booking: property is not open for bookings")
	ErrPropertyIDRequired  = errors.New("booking: property id is required")
)

type RequestBookingCommand struct {
	CommandID       string
	PropertyID      string
	GuestID         string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	CheckIn         time.Time
	CheckOut        time.Time
	Rooms           int
	Adults          int
	Children        int
	Payment         string
	CardLastFour    string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

func (c RequestBookingCommand) Validate() error {
	if strings.TrimSpace(c.PropertyID) == "" {
		return ErrPropertyIDRequired
	}
	if c.Adults <= 0 {
		return domainbooking.ErrInvalidGuests
	}
	return nil
}

type RequestBookingResult struct {
	BookingID string       `json:"booking_id"`
	Status    string       `json:"status"`
	Price     PriceSummary `json:"price"`
}

type PriceSummary struct {
	Nights           int   `json:"nights"`
	SubtotalCents    int64 `json:"subtotal_cents"`
	CleaningFeeCents int64 `json:"cleaning_fee_cents"`
	ServiceFeeCents  int64 `json:"service_fee_cents"`
	TotalCents       int64 `json:"total_cents"`
}

func mapPriceSummary(b pricing.Breakdown) PriceSummary {
	return PriceSummary{
		Nights:           b.Nights,
		SubtotalCents:    b.Subtotal.Amount,
		CleaningFeeCents: b.CleaningFee.Amount,
		ServiceFeeCents:  b.ServiceFee.Amount,
		TotalCents:       b.Total.Amount,
	}
}

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Fees       pricing.FeePolicy
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	stay, err := domainbooking.NewStay(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}

	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if !prop.Visible() {
		return nil, ErrPropertyNotBookable
	}

	payment, err := domainbooking.ParsePaymentMethod(cmd.Payment)
	if err != nil {
		return nil, err
	}

	// The nightly rate is snapshotted into the booking here; later property
	// price changes do not touch existing bookings.
	price, err := pricing.Quote(prop.NightlyRate, stay.Nights(), h.Fees)
	if err != nil {
		return nil, err
	}

	guest, err := resolveGuestDetails(ctx, unit, cmd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:           domainbooking.BookingID(cmd.CommandID),
		PropertyID:   prop.ID,
		GuestID:      cmd.GuestID,
		Guest:        guest,
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

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestBookingResult{
		BookingID: string(booking.ID),
		Status:    string(booking.Status),
		Price:     mapPriceSummary(booking.Price),
	}, nil
}

// resolveGuestDetails prefers explicit contact fields from the request and
// falls back to the guest's account record.
func resolveGuestDetails(ctx context.Context, unit uow.UnitOfWork, cmd RequestBookingCommand) (domainbooking.GuestDetails, error) {
	details := domainbooking.GuestDetails{
		Name:  strings.TrimSpace(cmd.GuestName),
		Email: strings.TrimSpace(cmd.GuestEmail),
		Phone: strings.TrimSpace(cmd.GuestPhone),
	}
	if details.Name != "" && details.Email != "" {
		return details, nil
	}
	account, err := unit.Users().ByID(ctx, domainuser.ID(cmd.GuestID))
	if err != nil {
		return domainbooking.GuestDetails{}, err
	}
	if details.Name == "" {
		details.Name = account.Name
	}
	if details.Email == "" {
		details.Email = account.Email
	}
	if details.Phone == "" {
		details.Phone = account.Phone
	}
	return details, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
var _ middleware.SelfValidating = (*RequestBookingCommand)(nil)
