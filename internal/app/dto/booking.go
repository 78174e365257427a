package dto

import (
	"time"

	domainbooking "staymarket/internal/domain/booking"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/pricing"
	"staymarket/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type BreakdownDTO struct {
	Nights      int      `json:"nights"`
	NightlyRate MoneyDTO `json:"nightly_rate"`
	Subtotal    MoneyDTO `json:"subtotal"`
	CleaningFee MoneyDTO `json:"cleaning_fee"`
	ServiceFee  MoneyDTO `json:"service_fee"`
	Total       MoneyDTO `json:"total"`
}

func MapBreakdown(b pricing.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		Nights:      b.Nights,
		NightlyRate: MapMoney(b.NightlyRate),
		Subtotal:    MapMoney(b.Subtotal),
		CleaningFee: MapMoney(b.CleaningFee),
		ServiceFee:  MapMoney(b.ServiceFee),
		Total:       MapMoney(b.Total),
	}
}

type BookingPropertySnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
}

type BookingSummary struct {
	ID           string                  `json:"id"`
	Property     BookingPropertySnapshot `json:"property"`
	GuestID      string                  `json:"guest_id"`
	GuestName    string                  `json:"guest_name"`
	GuestEmail   string                  `json:"guest_email"`
	CheckIn      time.Time               `json:"check_in"`
	CheckOut     time.Time               `json:"check_out"`
	Nights       int                     `json:"nights"`
	Rooms        int                     `json:"rooms"`
	Adults       int                     `json:"adults"`
	Children     int                     `json:"children"`
	Status       string                  `json:"status"`
	Payment      string                  `json:"payment_method"`
	CardLastFour string                  `json:"card_last_four,omitempty"`
	Price        BreakdownDTO            `json:"price"`
	CreatedAt    time.Time               `json:"created_at"`
}

func MapBookingSummary(b *domainbooking.Booking, prop *domainproperty.Property) BookingSummary {
	snapshot := BookingPropertySnapshot{ID: string(b.PropertyID)}
	if prop != nil {
		snapshot.Title = prop.Title
		snapshot.Location = prop.Location
	}
	return BookingSummary{
		ID:           string(b.ID),
		Property:     snapshot,
		GuestID:      b.GuestID,
		GuestName:    b.Guest.Name,
		GuestEmail:   b.Guest.Email,
		CheckIn:      b.Stay.CheckIn,
		CheckOut:     b.Stay.CheckOut,
		Nights:       b.Stay.Nights(),
		Rooms:        b.Rooms,
		Adults:       b.Adults,
		Children:     b.Children,
		Status:       string(b.Status),
		Payment:      string(b.Payment),
		CardLastFour: b.CardLastFour,
		Price:        MapBreakdown(b.Price),
		CreatedAt:    b.CreatedAt,
	}
}

// GuestBookingClassification carries the status-driven upcoming/past split.
type GuestBookingClassification struct {
	Upcoming []BookingSummary `json:"upcoming"`
	Past     []BookingSummary `json:"past"`
}

type HostBookingCollection struct {
	Items []BookingSummary `json:"items"`
}
