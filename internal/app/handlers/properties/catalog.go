package properties

import (
	"context"
	"errors"
	"strings"

	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	domainproperty "staymarket/internal/domain/property"
)

const (
	searchCatalogKey = "catalog.search"
	getPropertyKey   = "catalog.get"
)

var (
	ErrPropertyNotVisible = errors.New("properties: listing is not public")
	ErrPropertyIDRequired = errors.New("properties: property id is required")
)

// SearchCatalogQuery is the guest-facing search. Visibility filtering is not
// optional here: unapproved and deactivated listings never leak out.
type SearchCatalogQuery struct {
	Location      string
	MinGuests     int
	PriceMinCents int64
	PriceMaxCents int64
	Limit         int
	Offset        int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.PropertyCatalog, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainproperty.SearchParams{
		Location:      strings.TrimSpace(q.Location),
		MinGuests:     q.MinGuests,
		PriceMinCents: q.PriceMinCents,
		PriceMaxCents: q.PriceMaxCents,
		VisibleOnly:   true,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}.Normalized()

	result, err := unit.Properties().Search(execCtx, params)
	if err != nil {
		return dto.PropertyCatalog{}, err
	}

	items := make([]dto.PropertySummary, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, dto.MapPropertySummary(p))
	}
	return dto.PropertyCatalog{
		Items:  items,
		Total:  result.Total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

type GetPropertyQuery struct {
	PropertyID string
	// IncludeHidden is set on host and admin paths that may view their own
	// unapproved listings.
	IncludeHidden bool
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, q GetPropertyQuery) (dto.PropertySummary, error) {
	if strings.TrimSpace(q.PropertyID) == "" {
		return dto.PropertySummary{}, ErrPropertyIDRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertySummary{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return dto.PropertySummary{}, err
	}
	if !q.IncludeHidden && !prop.Visible() {
		return dto.PropertySummary{}, ErrPropertyNotVisible
	}
	return dto.MapPropertySummary(prop), nil
}

var _ queries.Handler[SearchCatalogQuery, dto.PropertyCatalog] = (*SearchCatalogHandler)(nil)
var _ queries.Handler[GetPropertyQuery, dto.PropertySummary] = (*GetPropertyHandler)(nil)
