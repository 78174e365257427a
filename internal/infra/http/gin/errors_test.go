package ginserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	BookingApp "staymarket/internal/app/handlers/booking"
	domainbooking "staymarket/internal/domain/booking"
	domainpayout "staymarket/internal/domain/payout"
)

func respondWith(t *testing.T, respond func(*gin.Context, error), err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	respond(c, err)
	return rec
}

func TestRespondBookingErrorStatuses(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, respondWith(t, respondBookingError, domainbooking.ErrInvalidGuests).Code)
	require.Equal(t, http.StatusBadRequest, respondWith(t, respondBookingError, fmt.Errorf("validate: %w", domainbooking.ErrStayTooShort)).Code)
	require.Equal(t, http.StatusConflict, respondWith(t, respondBookingError, BookingApp.ErrPropertyNotBookable).Code)

	// A repository outage is not the caller's fault.
	rec := respondWith(t, respondBookingError, errors.New("mongo: connection reset"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestRespondPayoutErrorStatuses(t *testing.T) {
	require.Equal(t, http.StatusUnprocessableEntity, respondWith(t, respondPayoutError, domainpayout.ErrInsufficientBalance).Code)
	require.Equal(t, http.StatusNotFound, respondWith(t, respondPayoutError, domainpayout.ErrPayoutNotFound).Code)
	require.Equal(t, http.StatusBadRequest, respondWith(t, respondPayoutError, domainpayout.ErrBankDetailsMissing).Code)

	rec := respondWith(t, respondPayoutError, errors.New("kafka: broker unreachable"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}
