package dto

import (
	"time"

	domainproperty "staymarket/internal/domain/property"
)

type PropertySummary struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	NightlyRate MoneyDTO  `json:"nightly_rate"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	GuestLimit  int       `json:"guest_limit"`
	Approval    string    `json:"approval"`
	Active      bool      `json:"active"`
	PhotoURLs   []string  `json:"photo_urls,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func MapPropertySummary(p *domainproperty.Property) PropertySummary {
	return PropertySummary{
		ID:          string(p.ID),
		HostID:      string(p.Host),
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		NightlyRate: MapMoney(p.NightlyRate),
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		GuestLimit:  p.GuestLimit,
		Approval:    string(p.Approval),
		Active:      p.Active,
		PhotoURLs:   p.PhotoURLs,
		CreatedAt:   p.CreatedAt,
	}
}

type PropertyCatalog struct {
	Items  []PropertySummary `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
