package properties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"staymarket/internal/app/uow"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/infra/storage/memory"
)

func newCatalogEnv(t *testing.T) (memory.Factory, context.Context) {
	t.Helper()
	factory := memory.NewFactory()
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return factory, uow.ContextWithUnitOfWork(context.Background(), unit)
}

func createListing(t *testing.T, ctx context.Context, host, title string, rateCents int64) string {
	t.Helper()
	create := &CreatePropertyHandler{}
	summary, err := create.Handle(ctx, CreatePropertyCommand{
		CommandID:        "prop-" + title,
		HostID:           host,
		Title:            title,
		Location:         "Porto",
		NightlyRateCents: rateCents,
		Currency:         "USD",
		GuestLimit:       4,
	})
	require.NoError(t, err)
	return summary.ID
}

func TestCatalogHidesUnapprovedListings(t *testing.T) {
	factory, ctx := newCatalogEnv(t)
	id := createListing(t, ctx, "host-1", "loft", 9000)

	search := &SearchCatalogHandler{UoWFactory: factory}
	result, err := search.Handle(ctx, SearchCatalogQuery{})
	require.NoError(t, err)
	require.Empty(t, result.Items)

	approve := &ApprovePropertyHandler{}
	_, err = approve.Handle(ctx, ApprovePropertyCommand{PropertyID: id})
	require.NoError(t, err)

	result, err = search.Handle(ctx, SearchCatalogQuery{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, id, result.Items[0].ID)
}

func TestUnpublishRemovesFromCatalog(t *testing.T) {
	factory, ctx := newCatalogEnv(t)
	id := createListing(t, ctx, "host-1", "loft", 9000)
	approve := &ApprovePropertyHandler{}
	_, err := approve.Handle(ctx, ApprovePropertyCommand{PropertyID: id})
	require.NoError(t, err)

	toggle := &SetPropertyActiveHandler{}
	_, err = toggle.Handle(ctx, SetPropertyActiveCommand{HostID: "host-1", PropertyID: id, Active: false})
	require.NoError(t, err)

	search := &SearchCatalogHandler{UoWFactory: factory}
	result, err := search.Handle(ctx, SearchCatalogQuery{})
	require.NoError(t, err)
	require.Empty(t, result.Items)

	_, err = toggle.Handle(ctx, SetPropertyActiveCommand{HostID: "host-1", PropertyID: id, Active: true})
	require.NoError(t, err)
	result, err = search.Handle(ctx, SearchCatalogQuery{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
}

func TestGetPropertyVisibility(t *testing.T) {
	factory, ctx := newCatalogEnv(t)
	id := createListing(t, ctx, "host-1", "loft", 9000)

	get := &GetPropertyHandler{UoWFactory: factory}
	_, err := get.Handle(ctx, GetPropertyQuery{PropertyID: id})
	require.ErrorIs(t, err, ErrPropertyNotVisible)

	// The owner path sees pending listings.
	summary, err := get.Handle(ctx, GetPropertyQuery{PropertyID: id, IncludeHidden: true})
	require.NoError(t, err)
	require.Equal(t, id, summary.ID)

	_, err = get.Handle(ctx, GetPropertyQuery{PropertyID: "missing"})
	require.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
}

func TestUpdateRejectsForeignHost(t *testing.T) {
	_, ctx := newCatalogEnv(t)
	id := createListing(t, ctx, "host-1", "loft", 9000)

	update := &UpdatePropertyHandler{}
	_, err := update.Handle(ctx, UpdatePropertyCommand{
		HostID:           "host-2",
		PropertyID:       id,
		Title:            "stolen loft",
		NightlyRateCents: 100,
		Currency:         "USD",
	})
	require.ErrorIs(t, err, ErrPropertyNotOwned)
}

func TestSearchFilters(t *testing.T) {
	factory, ctx := newCatalogEnv(t)
	approve := &ApprovePropertyHandler{}
	cheap := createListing(t, ctx, "host-1", "cheap studio", 4000)
	pricey := createListing(t, ctx, "host-1", "penthouse", 25000)
	for _, id := range []string{cheap, pricey} {
		_, err := approve.Handle(ctx, ApprovePropertyCommand{PropertyID: id})
		require.NoError(t, err)
	}

	search := &SearchCatalogHandler{UoWFactory: factory}
	result, err := search.Handle(ctx, SearchCatalogQuery{PriceMaxCents: 10000})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, cheap, result.Items[0].ID)

	result, err = search.Handle(ctx, SearchCatalogQuery{Location: "penthouse"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, pricey, result.Items[0].ID)
}

func TestListHostListings(t *testing.T) {
	factory, ctx := newCatalogEnv(t)
	createListing(t, ctx, "host-1", "one", 4000)
	createListing(t, ctx, "host-1", "two", 5000)
	createListing(t, ctx, "host-2", "other", 6000)

	list := &ListHostListingsHandler{UoWFactory: factory}
	result, err := list.Handle(ctx, ListHostListingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	_, err = list.Handle(ctx, ListHostListingsQuery{})
	require.ErrorIs(t, err, domainproperty.ErrHostRequired)
}
