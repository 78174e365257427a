package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"staymarket/internal/domain/shared/money"
)

var (
	ErrPropertyNotFound = errors.New("property: not found")
	ErrTitleRequired    = errors.New("property: title required")
	ErrHostRequired     = errors.New("property: host required")
	ErrInvalidRate      = errors.New("property: nightly rate must be positive")
	ErrInvalidCapacity  = errors.New("property: guest limit must be positive")
)

type PropertyID string

type HostID string

// Approval is the moderation state gating marketplace visibility.
type Approval string

const (
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
)

// Property is a host's listing. The nightly rate here is the live value used
// for search and for new bookings; existing bookings keep their own snapshot.
type Property struct {
	ID          PropertyID
	Host        HostID
	Title       string
	Description string
	Location    string
	NightlyRate money.Money
	Bedrooms    int
	Bathrooms   int
	GuestLimit  int
	Approval    Approval
	Active      bool
	PhotoURLs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	ListByHost(ctx context.Context, host HostID) ([]*Property, error)
}

type CreateParams struct {
	ID          PropertyID
	Host        HostID
	Title       string
	Description string
	Location    string
	NightlyRate money.Money
	Bedrooms    int
	Bathrooms   int
	GuestLimit  int
	Now         time.Time
}

func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Host == "" {
		return nil, ErrHostRequired
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return nil, ErrInvalidRate
	}
	if params.GuestLimit <= 0 {
		return nil, ErrInvalidCapacity
	}
	now := params.Now.UTC()
	return &Property{
		ID:          params.ID,
		Host:        params.Host,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Location:    strings.TrimSpace(params.Location),
		NightlyRate: params.NightlyRate,
		Bedrooms:    params.Bedrooms,
		Bathrooms:   params.Bathrooms,
		GuestLimit:  params.GuestLimit,
		Approval:    ApprovalPending,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Visible reports whether the property may appear in search, home and booking
// flows: it must be both active and approved.
func (p *Property) Visible() bool {
	return p.Active && p.Approval == ApprovalApproved
}

func (p *Property) Approve(now time.Time) {
	p.Approval = ApprovalApproved
	p.UpdatedAt = now.UTC()
}

func (p *Property) Activate(now time.Time) {
	p.Active = true
	p.UpdatedAt = now.UTC()
}

func (p *Property) Deactivate(now time.Time) {
	p.Active = false
	p.UpdatedAt = now.UTC()
}

// BelongsTo reports host ownership, used for authorization checks.
func (p *Property) BelongsTo(host HostID) bool {
	return p.Host == host
}

type UpdateParams struct {
	Title       string
	Description string
	Location    string
	NightlyRate money.Money
	Bedrooms    int
	Bathrooms   int
	GuestLimit  int
	Now         time.Time
}

func (p *Property) Update(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return ErrInvalidRate
	}
	if params.GuestLimit <= 0 {
		return ErrInvalidCapacity
	}
	p.Title = strings.TrimSpace(params.Title)
	p.Description = strings.TrimSpace(params.Description)
	p.Location = strings.TrimSpace(params.Location)
	p.NightlyRate = params.NightlyRate
	p.Bedrooms = params.Bedrooms
	p.Bathrooms = params.Bathrooms
	p.GuestLimit = params.GuestLimit
	p.UpdatedAt = params.Now.UTC()
	return nil
}
