package ginserver

import (
	"errors"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/dto"
	PropertyApp "staymarket/internal/app/handlers/properties"
	"staymarket/internal/app/queries"
	domainproperty "staymarket/internal/domain/property"
)

type PropertyHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
}

type PropertyHandler struct {
	Queries queries.Bus
}

// Search is the public catalog endpoint. Only approved, active listings are
// returned regardless of query parameters.
func (h PropertyHandler) Search(c *gin.Context) {
	q := PropertyApp.SearchCatalogQuery{
		Location:      c.Query("location"),
		MinGuests:     intQuery(c, "guests"),
		PriceMinCents: int64Query(c, "price_min"),
		PriceMaxCents: int64Query(c, "price_max"),
		Limit:         intQuery(c, "limit"),
		Offset:        intQuery(c, "offset"),
	}
	result, err := queries.Ask[PropertyApp.SearchCatalogQuery, dto.PropertyCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Get(c *gin.Context) {
	includeHidden := false
	if p, ok := currentPrincipal(c); ok && (p.HasRole("host") || p.HasRole("admin")) {
		includeHidden = true
	}
	q := PropertyApp.GetPropertyQuery{
		PropertyID:    c.Param("id"),
		IncludeHidden: includeHidden,
	}
	result, err := queries.Ask[PropertyApp.GetPropertyQuery, dto.PropertySummary](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondPropertyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, PropertyApp.ErrPropertyNotVisible):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, PropertyApp.ErrPropertyNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		respondUnmapped(c, err)
	}
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func int64Query(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

var _ PropertyHTTP = PropertyHandler{}
