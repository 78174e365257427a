package ginserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	BookingApp "staymarket/internal/app/handlers/booking"
	"staymarket/internal/app/queries"
	domainbooking "staymarket/internal/domain/booking"
	domainproperty "staymarket/internal/domain/property"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Quote(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	PropertyID   string    `json:"property_id"`
	GuestName    string    `json:"guest_name"`
	GuestEmail   string    `json:"guest_email"`
	GuestPhone   string    `json:"guest_phone"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Rooms        int       `json:"rooms"`
	Adults       int       `json:"adults"`
	Children     int       `json:"children"`
	Payment      string    `json:"payment"`
	CardLastFour string    `json:"card_last_four"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.RequestBookingCommand{
		CommandID:       generateCommandID(),
		PropertyID:      req.PropertyID,
		GuestID:         user.ID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Rooms:           req.Rooms,
		Adults:          req.Adults,
		Children:        req.Children,
		Payment:         req.Payment,
		CardLastFour:    req.CardLastFour,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.RequestBookingCommand, *BookingApp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Quote previews the price breakdown for a stay of the given length.
func (h BookingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	nights := 1
	if raw := c.Query("nights"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nights must be a positive integer"})
			return
		}
		nights = parsed
	}
	q := BookingApp.QuoteBookingPriceQuery{
		PropertyID: c.Param("id"),
		Nights:     nights,
	}
	result, err := queries.Ask[BookingApp.QuoteBookingPriceQuery, dto.BreakdownDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, BookingApp.ErrPropertyNotBookable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, BookingApp.ErrBookingNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		respondUnmapped(c, err)
	}
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
