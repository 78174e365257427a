package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	EarningsApp "staymarket/internal/app/handlers/earnings"
	"staymarket/internal/app/queries"
	domainpayout "staymarket/internal/domain/payout"
)

type EarningsHTTP interface {
	Earnings(c *gin.Context)
	ListPayouts(c *gin.Context)
	RequestPayout(c *gin.Context)
}

type EarningsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h EarningsHandler) Earnings(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	q := EarningsApp.HostEarningsQuery{
		HostID: host.ID,
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	result, err := queries.Ask[EarningsApp.HostEarningsQuery, dto.HostEarnings](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPayoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h EarningsHandler) ListPayouts(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	q := EarningsApp.ListPayoutsQuery{HostID: host.ID}
	result, err := queries.Ask[EarningsApp.ListPayoutsQuery, dto.PayoutCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPayoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type requestPayoutRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Method        string `json:"method"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
	PayPalEmail   string `json:"paypal_email"`
	Notes         string `json:"notes"`
}

func (h EarningsHandler) RequestPayout(c *gin.Context) {
	host, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req requestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := EarningsApp.RequestPayoutCommand{
		CommandID:       generateCommandID(),
		HostID:          host.ID,
		AmountCents:     req.AmountCents,
		Currency:        req.Currency,
		Method:          req.Method,
		BankName:        req.BankName,
		AccountName:     req.AccountName,
		AccountNumber:   req.AccountNumber,
		RoutingNumber:   req.RoutingNumber,
		PayPalEmail:     req.PayPalEmail,
		Notes:           req.Notes,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[EarningsApp.RequestPayoutCommand, *dto.PayoutSummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPayoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func respondPayoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainpayout.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domainpayout.ErrPayoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, EarningsApp.ErrHostRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		respondUnmapped(c, err)
	}
}

var _ EarningsHTTP = EarningsHandler{}
