package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/events"
	"staymarket/internal/domain/shared/money"
)

var (
	ErrPayoutNotFound      = errors.New("payout: not found")
	ErrInvalidAmount       = errors.New("payout: amount must be positive")
	ErrUnknownMethod       = errors.New("payout: unknown method")
	ErrBankDetailsMissing  = errors.New("payout: bank transfer requires bank name and account number")
	ErrPayPalEmailMissing  = errors.New("payout: paypal requires an email")
	ErrInsufficientBalance = errors.New("payout: amount exceeds available balance")
)

type PayoutID string

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodPayPal       Method = "paypal"
)

func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case MethodBankTransfer, MethodPayPal:
		return m, nil
	}
	return "", ErrUnknownMethod
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// MethodDetails holds the fields specific to the chosen payout method. Only
// the fields relevant to the method are validated and persisted.
type MethodDetails struct {
	BankName      string
	AccountName   string
	AccountNumber string
	RoutingNumber string
	PayPalEmail   string
}

// Payout is a host withdrawal request against accumulated earnings. The
// balance check happens at request time only; the ledger is not re-validated
// once an administrator advances the status.
type Payout struct {
	ID        PayoutID
	Reference string
	Host      property.HostID
	Amount    money.Money
	Method    Method
	Details   MethodDetails
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PayoutID) (*Payout, error)
	Save(ctx context.Context, p *Payout) error
	ListByHost(ctx context.Context, host property.HostID) ([]*Payout, error)
	// SumByHostAndStatuses totals payout amounts for the host across the given
	// statuses. A missing ledger yields a zero sum, not an error.
	SumByHostAndStatuses(ctx context.Context, host property.HostID, statuses []Status) (money.Money, error)
}

// Sequence hands out monotonically increasing payout numbers. Implementations
// must be atomic so concurrent requests never share a reference.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// FormatReference renders the human-readable ledger id, e.g. PO-007.
func FormatReference(seq int64) string {
	return fmt.Sprintf("PO-%03d", seq)
}

type CreateParams struct {
	ID        PayoutID
	Reference string
	Host      property.HostID
	Amount    money.Money
	Method    Method
	Details   MethodDetails
	Notes     string
	CreatedAt time.Time
}

func NewPayout(params CreateParams) (*Payout, error) {
	if params.Host == "" {
		return nil, errors.New("payout: host required")
	}
	if params.Amount.Amount <= 0 || params.Amount.Currency == "" {
		return nil, ErrInvalidAmount
	}
	switch params.Method {
	case MethodBankTransfer:
		if strings.TrimSpace(params.Details.BankName) == "" || strings.TrimSpace(params.Details.AccountNumber) == "" {
			return nil, ErrBankDetailsMissing
		}
	case MethodPayPal:
		if strings.TrimSpace(params.Details.PayPalEmail) == "" {
			return nil, ErrPayPalEmailMissing
		}
	default:
		return nil, ErrUnknownMethod
	}
	now := params.CreatedAt.UTC()
	p := &Payout{
		ID:        params.ID,
		Reference: params.Reference,
		Host:      params.Host,
		Amount:    params.Amount,
		Method:    params.Method,
		Details:   params.Details,
		Status:    StatusPending,
		Notes:     strings.TrimSpace(params.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Record(PayoutRequested{
		PayoutID:  p.ID,
		Reference: p.Reference,
		Host:      p.Host,
		Amount:    p.Amount,
		Method:    p.Method,
		At:        now,
	})
	return p, nil
}
