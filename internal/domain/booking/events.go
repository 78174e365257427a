package booking

import (
	"time"

	"staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	GuestID    string              `json:"guest_id"`
	CheckIn    time.Time           `json:"check_in"`
	CheckOut   time.Time           `json:"check_out"`
	Total      money.Money         `json:"total"`
	At         time.Time           `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingStatusChanged struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Previous   Status              `json:"previous"`
	Current    Status              `json:"current"`
	At         time.Time           `json:"at"`
}

func (e BookingStatusChanged) EventName() string     { return "booking.status_changed" }
func (e BookingStatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e BookingStatusChanged) OccurredAt() time.Time { return e.At }

type BookingRemoved struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	At         time.Time           `json:"at"`
}

func (e BookingRemoved) EventName() string     { return "booking.removed" }
func (e BookingRemoved) AggregateID() string   { return string(e.BookingID) }
func (e BookingRemoved) OccurredAt() time.Time { return e.At }
