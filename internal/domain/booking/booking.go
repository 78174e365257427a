package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staymarket/internal/domain/pricing"
	"staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/events"
)

var (
	ErrBookingNotFound  = errors.New("booking: not found")
	ErrGuestRequired    = errors.New("booking: guest reference required")
	ErrGuestNameMissing = errors.New("booking: guest name and email required")
	ErrInvalidGuests    = errors.New("booking: adults count must be positive")
	ErrUnknownStatus    = errors.New("booking: unknown status")
	ErrUnknownPayment   = errors.New("booking: unknown payment method")
)

type BookingID string

// Status is set directly by host or administrative action. There is no
// transition graph: any known status can replace any other.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates raw input against the known status set.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return s, nil
	}
	return "", ErrUnknownStatus
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCash   PaymentMethod = "cash"
	PaymentUnpaid PaymentMethod = "unpaid"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	if strings.TrimSpace(raw) == "" {
		return PaymentUnpaid, nil
	}
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case PaymentCard, PaymentCash, PaymentUnpaid:
		return m, nil
	}
	return "", ErrUnknownPayment
}

// GuestDetails are denormalized into the booking at creation time so the
// record survives later account changes.
type GuestDetails struct {
	Name  string
	Email string
	Phone string
}

// Booking snapshots everything needed to honor a stay: the nightly rate is
// copied from the property when the booking is made, not live-linked.
type Booking struct {
	ID           BookingID
	PropertyID   property.PropertyID
	GuestID      string
	Guest        GuestDetails
	Rooms        int
	Adults       int
	Children     int
	Stay         Stay
	Price        pricing.Breakdown
	Status       Status
	Payment      PaymentMethod
	CardLastFour string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id BookingID) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByProperty(ctx context.Context, id property.PropertyID) ([]*Booking, error)
	// ListByHostAndStatus returns bookings whose property belongs to the host,
	// optionally filtered to a single status (empty status means all).
	ListByHostAndStatus(ctx context.Context, hostID property.HostID, status Status) ([]*Booking, error)
}

type CreateParams struct {
	ID           BookingID
	PropertyID   property.PropertyID
	GuestID      string
	Guest        GuestDetails
	Rooms        int
	Adults       int
	Children     int
	Stay         Stay
	Price        pricing.Breakdown
	Payment      PaymentMethod
	CardLastFour string
	CreatedAt    time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if strings.TrimSpace(params.Guest.Name) == "" || strings.TrimSpace(params.Guest.Email) == "" {
		return nil, ErrGuestNameMissing
	}
	if params.Adults <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.Rooms <= 0 {
		params.Rooms = 1
	}
	payment := params.Payment
	if payment == "" {
		payment = PaymentUnpaid
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:           params.ID,
		PropertyID:   params.PropertyID,
		GuestID:      params.GuestID,
		Guest:        params.Guest,
		Rooms:        params.Rooms,
		Adults:       params.Adults,
		Children:     params.Children,
		Stay:         params.Stay,
		Price:        params.Price,
		Status:       StatusPending,
		Payment:      payment,
		CardLastFour: params.CardLastFour,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		CheckIn:    b.Stay.CheckIn,
		CheckOut:   b.Stay.CheckOut,
		Total:      b.Price.Total,
		At:         now,
	})
	return b, nil
}

// SetStatus replaces the status after validating it is a known value. The
// caller (host action or admin process) decides the target state directly.
func (b *Booking) SetStatus(status Status, now time.Time) error {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
	default:
		return ErrUnknownStatus
	}
	previous := b.Status
	b.Status = status
	b.UpdatedAt = now.UTC()
	if previous != status {
		b.Record(BookingStatusChanged{
			BookingID:  b.ID,
			PropertyID: b.PropertyID,
			Previous:   previous,
			Current:    status,
			At:         b.UpdatedAt,
		})
	}
	return nil
}
