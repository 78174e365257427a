package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	BookingApp "staymarket/internal/app/handlers/booking"
	"staymarket/internal/app/queries"
)

type HostBookingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	SetStatus(c *gin.Context)
	Delete(c *gin.Context)
}

type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h HostBookingHandler) List(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	q := BookingApp.ListHostBookingsQuery{
		HostID: host.ID,
		Status: c.Query("status"),
	}
	result, err := queries.Ask[BookingApp.ListHostBookingsQuery, dto.HostBookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type hostCreateBookingRequest struct {
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

// Create records a booking taken outside the marketplace, e.g. by phone.
func (h HostBookingHandler) Create(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req hostCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.CreateHostBookingCommand{
		CommandID:    generateCommandID(),
		HostID:       host.ID,
		PropertyID:   req.PropertyID,
		GuestName:    req.GuestName,
		GuestEmail:   req.GuestEmail,
		GuestPhone:   req.GuestPhone,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Rooms:        req.Rooms,
		Adults:       req.Adults,
		Children:     req.Children,
		Payment:      req.Payment,
		CardLastFour: req.CardLastFour,
	}
	result, err := commands.Dispatch[BookingApp.CreateHostBookingCommand, *BookingApp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h HostBookingHandler) SetStatus(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.SetBookingStatusCommand{
		HostID:    host.ID,
		BookingID: c.Param("id"),
		Status:    req.Status,
	}
	result, err := commands.Dispatch[BookingApp.SetBookingStatusCommand, *BookingApp.BookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Delete(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := BookingApp.RemoveBookingCommand{
		HostID:    host.ID,
		BookingID: c.Param("id"),
	}
	if _, err := commands.Dispatch[BookingApp.RemoveBookingCommand, *BookingApp.BookingActionResult](c.Request.Context(), h.Commands, cmd); err != nil {
		respondBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ HostBookingHTTP = HostBookingHandler{}
