package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
	domainuser "staymarket/internal/domain/user"
	"staymarket/internal/infra/storage/memory"
)

func newBookingEnv(t *testing.T) (memory.Factory, context.Context) {
	t.Helper()
	factory := memory.NewFactory()
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return factory, uow.ContextWithUnitOfWork(context.Background(), unit)
}

func seedProperty(t *testing.T, ctx context.Context, factory memory.Factory, id, host string, rateCents int64, visible bool) {
	t.Helper()
	now := time.Now()
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:          domainproperty.PropertyID(id),
		Host:        domainproperty.HostID(host),
		Title:       "Seaside flat",
		Location:    "Lisbon",
		NightlyRate: money.Must(rateCents, "USD"),
		GuestLimit:  4,
		Now:         now,
	})
	require.NoError(t, err)
	if visible {
		prop.Approve(now)
		prop.Activate(now)
	}
	require.NoError(t, factory.PropertyRepo.Save(ctx, prop))
}

func seedGuest(t *testing.T, ctx context.Context, factory memory.Factory, id, email string) {
	t.Helper()
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        email,
		Name:         "Test Guest",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, factory.UserRepo.Save(ctx, user))
}

func TestRequestBookingSnapshotsPrice(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)
	seedGuest(t, ctx, factory, "guest-1", "guest@example.com")

	handler := &RequestBookingHandler{Fees: pricing.DefaultPolicy("USD")}
	result, err := handler.Handle(ctx, RequestBookingCommand{
		CommandID:  "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		GuestName:  "Ana",
		GuestEmail: "ana@example.com",
		CheckIn:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		Adults:     2,
	})
	require.NoError(t, err)

	// 87.00 x 7 nights + 25.00 cleaning + 12% service fee.
	require.Equal(t, 7, result.Price.Nights)
	require.Equal(t, int64(60900), result.Price.SubtotalCents)
	require.Equal(t, int64(2500), result.Price.CleaningFeeCents)
	require.Equal(t, int64(7308), result.Price.ServiceFeeCents)
	require.Equal(t, int64(70708), result.Price.TotalCents)
	require.Equal(t, string(domainbooking.StatusPending), result.Status)

	// A later rate change must not touch the stored breakdown.
	prop, err := factory.PropertyRepo.ByID(ctx, "prop-1")
	require.NoError(t, err)
	prop.NightlyRate = money.Must(20000, "USD")
	require.NoError(t, factory.PropertyRepo.Save(ctx, prop))

	stored, err := factory.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.Equal(t, int64(70708), stored.Price.Total.Amount)
	require.Equal(t, int64(8700), stored.Price.NightlyRate.Amount)
}

func TestRequestBookingRejectsHiddenProperty(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, false)

	handler := &RequestBookingHandler{Fees: pricing.DefaultPolicy("USD")}
	_, err := handler.Handle(ctx, RequestBookingCommand{
		CommandID:  "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		GuestName:  "Ana",
		GuestEmail: "ana@example.com",
		CheckIn:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		Adults:     1,
	})
	require.ErrorIs(t, err, ErrPropertyNotBookable)
}

func TestRequestBookingFallsBackToAccountDetails(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)
	seedGuest(t, ctx, factory, "guest-1", "guest@example.com")

	handler := &RequestBookingHandler{Fees: pricing.DefaultPolicy("USD")}
	_, err := handler.Handle(ctx, RequestBookingCommand{
		CommandID:  "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		CheckIn:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Adults:     1,
	})
	require.NoError(t, err)

	stored, err := factory.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.Equal(t, "Test Guest", stored.Guest.Name)
	require.Equal(t, "guest@example.com", stored.Guest.Email)
}

func TestQuoteMatchesBookingPrice(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 12000, true)

	handler := &QuoteBookingPriceHandler{UoWFactory: factory, Fees: pricing.DefaultPolicy("USD")}
	quote, err := handler.Handle(ctx, QuoteBookingPriceQuery{PropertyID: "prop-1", Nights: 3})
	require.NoError(t, err)
	require.Equal(t, 3, quote.Nights)
	require.Equal(t, int64(36000), quote.Subtotal.Amount)
	require.Equal(t, int64(2500), quote.CleaningFee.Amount)
	require.Equal(t, int64(4320), quote.ServiceFee.Amount)
	require.Equal(t, int64(42820), quote.Total.Amount)

	// Asking twice yields the same numbers.
	again, err := handler.Handle(ctx, QuoteBookingPriceQuery{PropertyID: "prop-1", Nights: 3})
	require.NoError(t, err)
	require.Equal(t, quote, again)
}

func TestListGuestBookingsSplitsByStatus(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)

	statuses := []domainbooking.Status{
		domainbooking.StatusPending,
		domainbooking.StatusConfirmed,
		domainbooking.StatusCancelled,
		domainbooking.StatusCompleted,
	}
	for i, status := range statuses {
		stay, err := domainbooking.NewStay(
			time.Date(2026, 9, 1+i, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 3+i, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		price, err := pricing.Quote(money.Must(8700, "USD"), stay.Nights(), pricing.DefaultPolicy("USD"))
		require.NoError(t, err)
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(string(rune('a' + i))),
			PropertyID: "prop-1",
			GuestID:    "guest-1",
			Guest:      domainbooking.GuestDetails{Name: "Ana", Email: "ana@example.com"},
			Adults:     1,
			Stay:       stay,
			Price:      price,
			CreatedAt:  time.Now(),
		})
		require.NoError(t, err)
		require.NoError(t, b.SetStatus(status, time.Now()))
		require.NoError(t, factory.BookingRepo.Save(ctx, b))
	}

	handler := &ListGuestBookingsHandler{UoWFactory: factory}
	result, err := handler.Handle(ctx, ListGuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, result.Upcoming, 2)
	require.Len(t, result.Past, 2)
	for _, item := range result.Upcoming {
		require.Contains(t, []string{"pending", "confirmed"}, item.Status)
	}
	for _, item := range result.Past {
		require.Contains(t, []string{"cancelled", "completed"}, item.Status)
	}
}
