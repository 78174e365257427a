package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staymarket/internal/domain/pricing"
	"staymarket/internal/domain/shared/money"
)

func testStay(t *testing.T, nights int) Stay {
	t.Helper()
	checkIn := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewStay(checkIn, checkIn.AddDate(0, 0, nights))
	require.NoError(t, err)
	return s
}

func testBreakdown(t *testing.T, rateCents int64, nights int) pricing.Breakdown {
	t.Helper()
	b, err := pricing.Quote(money.Must(rateCents, "USD"), nights, pricing.DefaultPolicy("USD"))
	require.NoError(t, err)
	return b
}

func newTestBooking(t *testing.T, status Status) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		Guest:      GuestDetails{Name: "Ada Guest", Email: "ada@example.com"},
		Adults:     2,
		Stay:       testStay(t, 3),
		Price:      testBreakdown(t, 10000, 3),
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	if status != StatusPending {
		require.NoError(t, b.SetStatus(status, time.Now()))
	}
	return b
}

func TestNewBookingSnapshotsPrice(t *testing.T) {
	b := newTestBooking(t, StatusPending)
	require.Equal(t, int64(36100), b.Price.Total.Amount)
	require.Equal(t, StatusPending, b.Status)
	require.Equal(t, PaymentUnpaid, b.Payment)
	require.Len(t, b.PendingEvents(), 1)
}

func TestNewBookingValidation(t *testing.T) {
	params := CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		Guest:      GuestDetails{Name: "Ada", Email: "ada@example.com"},
		Adults:     1,
		Stay:       testStay(t, 1),
		Price:      testBreakdown(t, 10000, 1),
		CreatedAt:  time.Now(),
	}
	_, err := NewBooking(params)
	require.ErrorIs(t, err, ErrGuestRequired)

	params.GuestID = "guest-1"
	params.Adults = 0
	_, err = NewBooking(params)
	require.ErrorIs(t, err, ErrInvalidGuests)

	params.Adults = 1
	params.Guest.Email = ""
	_, err = NewBooking(params)
	require.ErrorIs(t, err, ErrGuestNameMissing)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	b := newTestBooking(t, StatusPending)
	require.ErrorIs(t, b.SetStatus("archived", time.Now()), ErrUnknownStatus)
	require.NoError(t, b.SetStatus(StatusCompleted, time.Now()))
	require.Equal(t, StatusCompleted, b.Status)
}

func TestClassifyPartitionsByStatusOnly(t *testing.T) {
	// Past check-in dates with pending/confirmed statuses must still classify
	// as upcoming: the partition is status-driven, never date-driven.
	bookings := []*Booking{
		newTestBooking(t, StatusPending),
		newTestBooking(t, StatusConfirmed),
		newTestBooking(t, StatusCancelled),
		newTestBooking(t, StatusCompleted),
	}
	got := Classify(bookings)
	require.Len(t, got.Upcoming, 2)
	require.Len(t, got.Past, 2)
	require.Equal(t, len(bookings), len(got.Upcoming)+len(got.Past))

	seen := map[*Booking]bool{}
	for _, b := range append(got.Upcoming, got.Past...) {
		require.False(t, seen[b], "booking classified twice")
		seen[b] = true
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Confirmed ")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("declined")
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestNewStay(t *testing.T) {
	checkIn := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 8, 11, 0, 0, 0, time.UTC)
	s, err := NewStay(checkIn, checkOut)
	require.NoError(t, err)
	require.Equal(t, 7, s.Nights())

	_, err = NewStay(checkOut, checkIn)
	require.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)

	_, err = NewStay(checkIn, checkIn)
	require.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)
}
