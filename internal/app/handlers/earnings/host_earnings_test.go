package earnings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	domainpayout "staymarket/internal/domain/payout"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
	"staymarket/internal/infra/storage/memory"
)

func newLedgerEnv(t *testing.T) (memory.Factory, context.Context) {
	t.Helper()
	factory := memory.NewFactory()
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return factory, uow.ContextWithUnitOfWork(context.Background(), unit)
}

func seedHostProperty(t *testing.T, ctx context.Context, factory memory.Factory, id, host string) {
	t.Helper()
	now := time.Now()
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:          domainproperty.PropertyID(id),
		Host:        domainproperty.HostID(host),
		Title:       "Mountain cabin",
		Location:    "Aspen",
		NightlyRate: money.Must(8700, "USD"),
		GuestLimit:  4,
		Now:         now,
	})
	require.NoError(t, err)
	prop.Approve(now)
	prop.Activate(now)
	require.NoError(t, factory.PropertyRepo.Save(ctx, prop))
}

// seedCompletedBooking stores a completed 7-night stay at 87.00/night:
// total 707.08 per booking.
func seedCompletedBooking(t *testing.T, ctx context.Context, factory memory.Factory, id, propID string) {
	t.Helper()
	stay, err := domainbooking.NewStay(
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 8, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	price, err := pricing.Quote(money.Must(8700, "USD"), stay.Nights(), pricing.DefaultPolicy("USD"))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: domainproperty.PropertyID(propID),
		GuestID:    "guest-1",
		Guest:      domainbooking.GuestDetails{Name: "Ana", Email: "ana@example.com"},
		Adults:     2,
		Stay:       stay,
		Price:      price,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, b.SetStatus(domainbooking.StatusCompleted, time.Now()))
	require.NoError(t, factory.BookingRepo.Save(ctx, b))
}

func TestHostEarningsEmptyLedger(t *testing.T) {
	factory, _ := newLedgerEnv(t)
	handler := &HostEarningsHandler{UoWFactory: factory, Fees: pricing.DefaultPolicy("USD")}
	result, err := handler.Handle(context.Background(), HostEarningsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Equal(t, int64(0), result.Stats.TotalEarnings.Amount)
	require.Equal(t, int64(0), result.Stats.AvailableBalance.Amount)
	require.Equal(t, "USD", result.Stats.AvailableBalance.Currency)
	require.Empty(t, result.Bookings)
}

func TestHostEarningsAggregatesCompletedBookings(t *testing.T) {
	factory, ctx := newLedgerEnv(t)
	seedHostProperty(t, ctx, factory, "prop-1", "host-1")
	seedCompletedBooking(t, ctx, factory, "bk-1", "prop-1")
	seedCompletedBooking(t, ctx, factory, "bk-2", "prop-1")

	handler := &HostEarningsHandler{UoWFactory: factory, Fees: pricing.DefaultPolicy("USD")}
	result, err := handler.Handle(ctx, HostEarningsQuery{HostID: "host-1"})
	require.NoError(t, err)

	// Two bookings at 707.08 gross each; 10% commission, rounded half up.
	require.Equal(t, int64(141416), result.Stats.TotalEarnings.Amount)
	require.Equal(t, int64(14142), result.Stats.Commission.Amount)
	require.Equal(t, int64(127274), result.Stats.NetEarnings.Amount)
	require.Equal(t, int64(127274), result.Stats.AvailableBalance.Amount)
	require.Equal(t, 2, result.Total)
	require.Len(t, result.Bookings, 2)
}

func TestHostEarningsPaginates(t *testing.T) {
	factory, ctx := newLedgerEnv(t)
	seedHostProperty(t, ctx, factory, "prop-1", "host-1")
	for i := 0; i < 5; i++ {
		seedCompletedBooking(t, ctx, factory, fmt.Sprintf("bk-%d", i), "prop-1")
	}

	handler := &HostEarningsHandler{UoWFactory: factory, Fees: pricing.DefaultPolicy("USD")}
	page, err := handler.Handle(ctx, HostEarningsQuery{HostID: "host-1", Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Bookings, 1)
	// Pagination trims the listing, never the ledger totals.
	require.Equal(t, int64(5*70708), page.Stats.TotalEarnings.Amount)
}

func TestRequestPayoutHappyPath(t *testing.T) {
	factory, ctx := newLedgerEnv(t)
	seedHostProperty(t, ctx, factory, "prop-1", "host-1")
	seedCompletedBooking(t, ctx, factory, "bk-1", "prop-1")

	handler := &RequestPayoutHandler{Fees: pricing.DefaultPolicy("USD")}
	payout, err := handler.Handle(ctx, RequestPayoutCommand{
		CommandID:   "po-1",
		HostID:      "host-1",
		AmountCents: 50000,
		Method:      "paypal",
		PayPalEmail: "host@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "PO-001", payout.Reference)
	require.Equal(t, "pending", payout.Status)

	// The pending payout reduces the available balance immediately:
	// 707.08 gross - 70.71 commission - 500.00 pending = 136.37.
	earnings := &HostEarningsHandler{UoWFactory: factory, Fees: pricing.DefaultPolicy("USD")}
	stats, err := earnings.Handle(ctx, HostEarningsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Equal(t, int64(63637), stats.Stats.NetEarnings.Amount)
	require.Equal(t, int64(50000), stats.Stats.PendingPayouts.Amount)
	require.Equal(t, int64(13637), stats.Stats.AvailableBalance.Amount)

	second, err := handler.Handle(ctx, RequestPayoutCommand{
		CommandID:   "po-2",
		HostID:      "host-1",
		AmountCents: 13637,
		Method:      "paypal",
		PayPalEmail: "host@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "PO-002", second.Reference)
}

func TestRequestPayoutInsufficientBalanceLeavesLedgerUntouched(t *testing.T) {
	factory, ctx := newLedgerEnv(t)
	seedHostProperty(t, ctx, factory, "prop-1", "host-1")
	seedCompletedBooking(t, ctx, factory, "bk-1", "prop-1")

	handler := &RequestPayoutHandler{Fees: pricing.DefaultPolicy("USD")}
	_, err := handler.Handle(ctx, RequestPayoutCommand{
		CommandID:   "po-1",
		HostID:      "host-1",
		AmountCents: 9_999_999,
		Method:      "paypal",
		PayPalEmail: "host@example.com",
	})
	require.ErrorIs(t, err, domainpayout.ErrInsufficientBalance)

	stored, err := factory.PayoutRepo.ListByHost(ctx, "host-1")
	require.NoError(t, err)
	require.Empty(t, stored)

	// The rejected request consumed no sequence number.
	accepted, err := handler.Handle(ctx, RequestPayoutCommand{
		CommandID:   "po-2",
		HostID:      "host-1",
		AmountCents: 1000,
		Method:      "paypal",
		PayPalEmail: "host@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "PO-001", accepted.Reference)
}

func TestRequestPayoutValidatesMethodDetails(t *testing.T) {
	factory, ctx := newLedgerEnv(t)
	seedHostProperty(t, ctx, factory, "prop-1", "host-1")
	seedCompletedBooking(t, ctx, factory, "bk-1", "prop-1")

	handler := &RequestPayoutHandler{Fees: pricing.DefaultPolicy("USD")}
	_, err := handler.Handle(ctx, RequestPayoutCommand{
		CommandID:   "po-1",
		HostID:      "host-1",
		AmountCents: 1000,
		Method:      "bank_transfer",
	})
	require.ErrorIs(t, err, domainpayout.ErrBankDetailsMissing)

	_, err = handler.Handle(ctx, RequestPayoutCommand{
		CommandID:   "po-2",
		HostID:      "host-1",
		AmountCents: 1000,
		Method:      "bank_transfer",
		BankName:    "First National",
		AccountNumber: "12345678",
	})
	require.NoError(t, err)
}

func TestListPayoutsNewestFirst(t *testing.T) {
	factory, ctx := newLedgerEnv(t)
	seedHostProperty(t, ctx, factory, "prop-1", "host-1")
	seedCompletedBooking(t, ctx, factory, "bk-1", "prop-1")

	handler := &RequestPayoutHandler{Fees: pricing.DefaultPolicy("USD")}
	for i := 0; i < 3; i++ {
		_, err := handler.Handle(ctx, RequestPayoutCommand{
			CommandID:   fmt.Sprintf("po-%d", i),
			HostID:      "host-1",
			AmountCents: 1000,
			Method:      "paypal",
			PayPalEmail: "host@example.com",
		})
		require.NoError(t, err)
	}

	list := &ListPayoutsHandler{UoWFactory: factory}
	result, err := list.Handle(ctx, ListPayoutsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	references := make(map[string]struct{})
	for _, item := range result.Items {
		references[item.Reference] = struct{}{}
	}
	require.Len(t, references, 3)
}
