package booking

import (
	"context"
	"errors"
	"strings"

	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
)

const quoteBookingPriceKey = "booking.quote"

// QuoteBookingPriceQuery previews the cost of a stay without persisting
// anything. Identical inputs always yield identical breakdowns.
type QuoteBookingPriceQuery struct {
	PropertyID string
	Nights     int
}

func (q QuoteBookingPriceQuery) Key() string { return quoteBookingPriceKey }

type QuoteBookingPriceHandler struct {
	UoWFactory uow.UoWFactory
	Fees       pricing.FeePolicy
}

func (h *QuoteBookingPriceHandler) Handle(ctx context.Context, q QuoteBookingPriceQuery) (dto.BreakdownDTO, error) {
	if strings.TrimSpace(q.PropertyID) == "" {
		return dto.BreakdownDTO{}, errors.New("booking: property id is required")
	}
	nights := q.Nights
	if nights == 0 {
		nights = 1
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BreakdownDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return dto.BreakdownDTO{}, err
	}
	if !prop.Visible() {
		return dto.BreakdownDTO{}, ErrPropertyNotBookable
	}

	breakdown, err := pricing.Quote(prop.NightlyRate, nights, h.Fees)
	if err != nil {
		return dto.BreakdownDTO{}, err
	}
	return dto.MapBreakdown(breakdown), nil
}

var _ queries.Handler[QuoteBookingPriceQuery, dto.BreakdownDTO] = (*QuoteBookingPriceHandler)(nil)
