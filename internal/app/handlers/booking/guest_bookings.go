package booking

import (
	"context"
	"errors"
	"sort"
	"strings"

	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	domainproperty "staymarket/internal/domain/property"
)

const listGuestBookingsKey = "guest.bookings.list"

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the guest's bookings partitioned into upcoming and past by
// status membership alone.
func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.GuestBookingClassification, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.GuestBookingClassification{}, errors.New("guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.GuestBookingClassification{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.GuestBookingClassification{}, err
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	classified := domainbooking.Classify(bookings)
	result := dto.GuestBookingClassification{
		Upcoming: make([]dto.BookingSummary, 0, len(classified.Upcoming)),
		Past:     make([]dto.BookingSummary, 0, len(classified.Past)),
	}
	for _, b := range classified.Upcoming {
		result.Upcoming = append(result.Upcoming, dto.MapBookingSummary(b, lookupProperty(execCtx, unit, b.PropertyID)))
	}
	for _, b := range classified.Past {
		result.Past = append(result.Past, dto.MapBookingSummary(b, lookupProperty(execCtx, unit, b.PropertyID)))
	}
	return result, nil
}

// lookupProperty tolerates missing properties: a deleted listing must not hide
// the guest's booking history.
func lookupProperty(ctx context.Context, unit uow.UnitOfWork, id domainproperty.PropertyID) *domainproperty.Property {
	prop, err := unit.Properties().ByID(ctx, id)
	if err != nil {
		return nil
	}
	return prop
}

var _ queries.Handler[ListGuestBookingsQuery, dto.GuestBookingClassification] = (*ListGuestBookingsHandler)(nil)
