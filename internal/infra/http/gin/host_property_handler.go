package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	PropertyApp "staymarket/internal/app/handlers/properties"
	"staymarket/internal/app/queries"
)

type HostPropertyHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Publish(c *gin.Context)
	Unpublish(c *gin.Context)
}

type HostPropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type propertyRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Currency         string `json:"currency"`
	Bedrooms         int    `json:"bedrooms"`
	Bathrooms        int    `json:"bathrooms"`
	GuestLimit       int    `json:"guest_limit"`
}

func (h HostPropertyHandler) List(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	q := PropertyApp.ListHostListingsQuery{HostID: host.ID}
	result, err := queries.Ask[PropertyApp.ListHostListingsQuery, dto.PropertyCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) Create(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := PropertyApp.CreatePropertyCommand{
		CommandID:        generateCommandID(),
		HostID:           host.ID,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		NightlyRateCents: req.NightlyRateCents,
		Currency:         req.Currency,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		GuestLimit:       req.GuestLimit,
	}
	result, err := commands.Dispatch[PropertyApp.CreatePropertyCommand, *dto.PropertySummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostPropertyHandler) Update(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := PropertyApp.UpdatePropertyCommand{
		HostID:           host.ID,
		PropertyID:       c.Param("id"),
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		NightlyRateCents: req.NightlyRateCents,
		Currency:         req.Currency,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		GuestLimit:       req.GuestLimit,
	}
	result, err := commands.Dispatch[PropertyApp.UpdatePropertyCommand, *dto.PropertySummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostPropertyHandler) Publish(c *gin.Context) {
	h.setActive(c, true)
}

func (h HostPropertyHandler) Unpublish(c *gin.Context) {
	h.setActive(c, false)
}

func (h HostPropertyHandler) setActive(c *gin.Context, active bool) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := PropertyApp.SetPropertyActiveCommand{
		HostID:     host.ID,
		PropertyID: c.Param("id"),
		Active:     active,
	}
	result, err := commands.Dispatch[PropertyApp.SetPropertyActiveCommand, *dto.PropertySummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostPropertyHTTP = HostPropertyHandler{}
