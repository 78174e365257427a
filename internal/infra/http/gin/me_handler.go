package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/dto"
	BookingApp "staymarket/internal/app/handlers/booking"
	"staymarket/internal/app/queries"
)

type MeHTTP interface {
	ListBookings(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
}

// ListBookings returns the caller's bookings split into upcoming and past by
// booking status.
func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := BookingApp.ListGuestBookingsQuery{GuestID: user.ID}
	result, err := queries.Ask[BookingApp.ListGuestBookingsQuery, dto.GuestBookingClassification](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = MeHandler{}
