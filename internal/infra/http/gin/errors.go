package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	BookingApp "staymarket/internal/app/handlers/booking"
	ChatApp "staymarket/internal/app/handlers/chat"
	PropertyApp "staymarket/internal/app/handlers/properties"
	domainbooking "staymarket/internal/domain/booking"
	domainmessaging "staymarket/internal/domain/messaging"
	domainpayout "staymarket/internal/domain/payout"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

// clientInputErrors are the domain rejections that describe a bad request
// rather than a broken server. Anything outside this set that a responder
// switch does not map explicitly is reported as an internal failure.
var clientInputErrors = []error{
	domainbooking.ErrCheckOutBeforeCheckIn,
	domainbooking.ErrStayTooShort,
	domainbooking.ErrGuestRequired,
	domainbooking.ErrGuestNameMissing,
	domainbooking.ErrInvalidGuests,
	domainbooking.ErrUnknownStatus,
	domainbooking.ErrUnknownPayment,
	domainpayout.ErrInvalidAmount,
	domainpayout.ErrUnknownMethod,
	domainpayout.ErrBankDetailsMissing,
	domainpayout.ErrPayPalEmailMissing,
	domainproperty.ErrTitleRequired,
	domainproperty.ErrHostRequired,
	domainproperty.ErrInvalidRate,
	domainproperty.ErrInvalidCapacity,
	domainmessaging.ErrBodyRequired,
	domainmessaging.ErrUnknownSenderRole,
	pricing.ErrInvalidNights,
	pricing.ErrNegativeRate,
	pricing.ErrCurrencyUnset,
	money.ErrInvalidCurrency,
	money.ErrCurrencyMismatch,
	money.ErrNegativeAmount,
	BookingApp.ErrPropertyIDRequired,
	ChatApp.ErrParticipantsRequired,
	ChatApp.ErrSideRequired,
	PropertyApp.ErrPropertyIDRequired,
}

func isClientError(err error) bool {
	for _, sentinel := range clientInputErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// respondUnmapped handles the default branch of the responder switches.
// Validation rejections surface as 400; infrastructure failures never do.
func respondUnmapped(c *gin.Context, err error) {
	if isClientError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
