package earnings

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	domainbooking "staymarket/internal/domain/booking"
	domainearnings "staymarket/internal/domain/earnings"
	domainpayout "staymarket/internal/domain/payout"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

const (
	hostEarningsKey = "host.earnings"
	listPayoutsKey  = "host.payouts.list"
)

var ErrHostRequired = errors.New("earnings: host id is required")

const defaultPageSize = 20

type HostEarningsQuery struct {
	HostID string
	Limit  int
	Offset int
}

func (q HostEarningsQuery) Key() string { return hostEarningsKey }

type HostEarningsHandler struct {
	UoWFactory uow.UoWFactory
	Fees       pricing.FeePolicy
	Logger     *slog.Logger
}

// Handle recomputes the ledger snapshot from scratch on every call: gross from
// completed bookings, payout totals from the ledger, nothing cached.
func (h *HostEarningsHandler) Handle(ctx context.Context, q HostEarningsQuery) (dto.HostEarnings, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.HostEarnings{}, ErrHostRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostEarnings{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	stats, completed, err := computeHostStats(execCtx, unit, domainproperty.HostID(hostID), h.Fees)
	if err != nil {
		return dto.HostEarnings{}, err
	}

	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	page := paginate(completed, limit, offset)

	items := make([]dto.BookingSummary, 0, len(page))
	for _, b := range page {
		prop, propErr := unit.Properties().ByID(execCtx, b.PropertyID)
		if propErr != nil {
			prop = nil
		}
		items = append(items, dto.MapBookingSummary(b, prop))
	}

	if h.Logger != nil {
		h.Logger.Debug("host earnings computed",
			"host_id", hostID,
			"gross_cents", stats.TotalEarnings.Amount,
			"available_cents", stats.AvailableBalance.Amount,
		)
	}
	return dto.HostEarnings{
		Stats:    dto.MapEarningsStats(stats),
		Bookings: items,
		Total:    len(completed),
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// computeHostStats is shared by the earnings query and the payout request: the
// balance a payout is validated against is exactly the balance the host sees.
func computeHostStats(ctx context.Context, unit uow.UnitOfWork, host domainproperty.HostID, fees pricing.FeePolicy) (domainearnings.Stats, []*domainbooking.Booking, error) {
	completed, err := unit.Bookings().ListByHostAndStatus(ctx, host, domainbooking.StatusCompleted)
	if err != nil {
		return domainearnings.Stats{}, nil, err
	}

	currency := fees.CleaningFee.Currency
	gross := money.Money{Amount: 0, Currency: currency}
	for _, b := range completed {
		if gross.Currency == "" {
			gross.Currency = b.Price.Total.Currency
		}
		gross, err = gross.Add(b.Price.Total)
		if err != nil {
			return domainearnings.Stats{}, nil, err
		}
	}
	if gross.Currency == "" {
		return domainearnings.Zero(currency), completed, nil
	}

	completedPayouts, err := unit.Payouts().SumByHostAndStatuses(ctx, host, []domainpayout.Status{domainpayout.StatusCompleted})
	if err != nil {
		return domainearnings.Stats{}, nil, err
	}
	pendingPayouts, err := unit.Payouts().SumByHostAndStatuses(ctx, host, []domainpayout.Status{domainpayout.StatusPending, domainpayout.StatusProcessing})
	if err != nil {
		return domainearnings.Stats{}, nil, err
	}
	completedPayouts = withCurrency(completedPayouts, gross.Currency)
	pendingPayouts = withCurrency(pendingPayouts, gross.Currency)

	stats, err := domainearnings.Compute(gross, completedPayouts, pendingPayouts, fees)
	if err != nil {
		return domainearnings.Stats{}, nil, err
	}
	return stats, completed, nil
}

// withCurrency fills in the currency on zero sums coming from an empty ledger.
func withCurrency(m money.Money, currency string) money.Money {
	if m.Currency == "" {
		m.Currency = currency
	}
	return m
}

func paginate(bookings []*domainbooking.Booking, limit, offset int) []*domainbooking.Booking {
	if offset >= len(bookings) {
		return nil
	}
	end := offset + limit
	if end > len(bookings) {
		end = len(bookings)
	}
	return bookings[offset:end]
}

type ListPayoutsQuery struct {
	HostID string
}

func (q ListPayoutsQuery) Key() string { return listPayoutsKey }

type ListPayoutsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPayoutsHandler) Handle(ctx context.Context, q ListPayoutsQuery) (dto.PayoutCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.PayoutCollection{}, ErrHostRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PayoutCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	payouts, err := unit.Payouts().ListByHost(execCtx, domainproperty.HostID(hostID))
	if err != nil {
		return dto.PayoutCollection{}, err
	}
	sort.Slice(payouts, func(i, j int) bool {
		return payouts[i].CreatedAt.After(payouts[j].CreatedAt)
	})

	items := make([]dto.PayoutSummary, 0, len(payouts))
	for _, p := range payouts {
		items = append(items, dto.MapPayoutSummary(p))
	}
	return dto.PayoutCollection{Items: items}, nil
}

var _ queries.Handler[HostEarningsQuery, dto.HostEarnings] = (*HostEarningsHandler)(nil)
var _ queries.Handler[ListPayoutsQuery, dto.PayoutCollection] = (*ListPayoutsHandler)(nil)
