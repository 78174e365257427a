package properties

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	"staymarket/internal/app/handlers/support"
	"staymarket/internal/app/queries"
	"staymarket/internal/app/uow"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

const (
	createPropertyKey   = "host.properties.create"
	updatePropertyKey   = "host.properties.update"
	setActiveKey        = "host.properties.set_active"
	listHostListingsKey = "host.properties.list"
	approvePropertyKey  = "admin.properties.approve"
)

var ErrPropertyNotOwned = errors.New("properties: not owned by host")

type CreatePropertyCommand struct {
	CommandID        string
	HostID           string
	Title            string
	Description      string
	Location         string
	NightlyRateCents int64
	Currency         string
	Bedrooms         int
	Bathrooms        int
	GuestLimit       int
}

func (c CreatePropertyCommand) Key() string { return createPropertyKey }

func (c CreatePropertyCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return domainproperty.ErrHostRequired
	}
	if strings.TrimSpace(c.Title) == "" {
		return domainproperty.ErrTitleRequired
	}
	if c.NightlyRateCents <= 0 {
		return domainproperty.ErrInvalidRate
	}
	return nil
}

type CreatePropertyHandler struct {
	Logger *slog.Logger
}

// Handle creates the listing in pending approval; it stays invisible to guests
// until an administrator approves it.
func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (*dto.PropertySummary, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	rate, err := money.New(cmd.NightlyRateCents, cmd.Currency)
	if err != nil {
		return nil, err
	}
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:          domainproperty.PropertyID(cmd.CommandID),
		Host:        domainproperty.HostID(cmd.HostID),
		Title:       cmd.Title,
		Description: cmd.Description,
		Location:    cmd.Location,
		NightlyRate: rate,
		Bedrooms:    cmd.Bedrooms,
		Bathrooms:   cmd.Bathrooms,
		GuestLimit:  cmd.GuestLimit,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property created", "property_id", prop.ID, "host_id", cmd.HostID)
	}
	summary := dto.MapPropertySummary(prop)
	return &summary, nil
}

type UpdatePropertyCommand struct {
	HostID           string
	PropertyID       string
	Title            string
	Description      string
	Location         string
	NightlyRateCents int64
	Currency         string
	Bedrooms         int
	Bathrooms        int
	GuestLimit       int
}

func (c UpdatePropertyCommand) Key() string { return updatePropertyKey }

type UpdatePropertyHandler struct {
	Logger *slog.Logger
}

// Handle changes the live listing. Rate changes affect future quotes and
// bookings only; existing booking snapshots are untouched.
func (h *UpdatePropertyHandler) Handle(ctx context.Context, cmd UpdatePropertyCommand) (*dto.PropertySummary, error) {
	prop, unit, err := loadOwnedProperty(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	rate, err := money.New(cmd.NightlyRateCents, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if err := prop.Update(domainproperty.UpdateParams{
		Title:       cmd.Title,
		Description: cmd.Description,
		Location:    cmd.Location,
		NightlyRate: rate,
		Bedrooms:    cmd.Bedrooms,
		Bathrooms:   cmd.Bathrooms,
		GuestLimit:  cmd.GuestLimit,
		Now:         time.Now(),
	}); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property updated", "property_id", prop.ID, "host_id", cmd.HostID)
	}
	summary := dto.MapPropertySummary(prop)
	return &summary, nil
}

type SetPropertyActiveCommand struct {
	HostID     string
	PropertyID string
	Active     bool
}

func (c SetPropertyActiveCommand) Key() string { return setActiveKey }

type SetPropertyActiveHandler struct {
	Logger *slog.Logger
}

func (h *SetPropertyActiveHandler) Handle(ctx context.Context, cmd SetPropertyActiveCommand) (*dto.PropertySummary, error) {
	prop, unit, err := loadOwnedProperty(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if cmd.Active {
		prop.Activate(now)
	} else {
		prop.Deactivate(now)
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property visibility toggled", "property_id", prop.ID, "active", cmd.Active)
	}
	summary := dto.MapPropertySummary(prop)
	return &summary, nil
}

type ListHostListingsQuery struct {
	HostID string
}

func (q ListHostListingsQuery) Key() string { return listHostListingsKey }

type ListHostListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.PropertyCatalog, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.PropertyCatalog{}, domainproperty.ErrHostRequired
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listings, err := unit.Properties().ListByHost(execCtx, domainproperty.HostID(hostID))
	if err != nil {
		return dto.PropertyCatalog{}, err
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	items := make([]dto.PropertySummary, 0, len(listings))
	for _, p := range listings {
		items = append(items, dto.MapPropertySummary(p))
	}
	return dto.PropertyCatalog{Items: items, Total: len(items), Limit: len(items), Offset: 0}, nil
}

type ApprovePropertyCommand struct {
	PropertyID string
}

func (c ApprovePropertyCommand) Key() string { return approvePropertyKey }

type ApprovePropertyHandler struct {
	Logger *slog.Logger
}

// Handle is the moderation step. Routing restricts it to administrators.
func (h *ApprovePropertyHandler) Handle(ctx context.Context, cmd ApprovePropertyCommand) (*dto.PropertySummary, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	prop.Approve(time.Now())
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property approved", "property_id", prop.ID)
	}
	summary := dto.MapPropertySummary(prop)
	return &summary, nil
}

func loadOwnedProperty(ctx context.Context, hostID, propertyID string) (*domainproperty.Property, uow.UnitOfWork, error) {
	if strings.TrimSpace(hostID) == "" {
		return nil, nil, domainproperty.ErrHostRequired
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(propertyID))
	if err != nil {
		return nil, nil, err
	}
	if !prop.BelongsTo(domainproperty.HostID(hostID)) {
		return nil, nil, ErrPropertyNotOwned
	}
	return prop, unit, nil
}

var _ commands.Handler[CreatePropertyCommand, *dto.PropertySummary] = (*CreatePropertyHandler)(nil)
var _ commands.Handler[UpdatePropertyCommand, *dto.PropertySummary] = (*UpdatePropertyHandler)(nil)
var _ commands.Handler[SetPropertyActiveCommand, *dto.PropertySummary] = (*SetPropertyActiveHandler)(nil)
var _ commands.Handler[ApprovePropertyCommand, *dto.PropertySummary] = (*ApprovePropertyHandler)(nil)
var _ queries.Handler[ListHostListingsQuery, dto.PropertyCatalog] = (*ListHostListingsHandler)(nil)
