package earnings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	"staymarket/internal/app/middleware"
	"staymarket/internal/app/outbox"
	"staymarket/internal/app/uow"
	domainpayout "staymarket/internal/domain/payout"
	"staymarket/internal/domain/pricing"
	domainproperty "staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

const requestPayoutKey = "host.payouts.request"

type RequestPayoutCommand struct {
	CommandID       string
	HostID          string
	AmountCents     int64
	Currency        string
	Method          string
	BankName        string
	AccountName     string
	AccountNumber   string
	RoutingNumber   string
	PayPalEmail     string
	Notes           string
	IdempotencyKeyV string
}

func (c RequestPayoutCommand) Key() string { return requestPayoutKey }

func (c RequestPayoutCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestPayoutCommand) ResultPrototype() any { return &dto.PayoutSummary{} }

func (c RequestPayoutCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if c.AmountCents <= 0 {
		return domainpayout.ErrInvalidAmount
	}
	if _, err := domainpayout.ParseMethod(c.Method); err != nil {
		return err
	}
	return nil
}

type RequestPayoutHandler struct {
	Fees     pricing.FeePolicy
	Sequence domainpayout.Sequence
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
}

// Handle validates the request against the live available balance and, when it
// passes, writes the pending ledger row. A rejected request persists nothing:
// the balance check happens before the sequence is consumed or any row saved.
func (h *RequestPayoutHandler) Handle(ctx context.Context, cmd RequestPayoutCommand) (*dto.PayoutSummary, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	host := domainproperty.HostID(strings.TrimSpace(cmd.HostID))
	stats, _, err := computeHostStats(ctx, unit, host, h.Fees)
	if err != nil {
		return nil, err
	}

	currency := cmd.Currency
	if currency == "" {
		currency = stats.AvailableBalance.Currency
	}
	if currency == "" {
		currency = h.Fees.CleaningFee.Currency
	}
	amount, err := money.New(cmd.AmountCents, currency)
	if err != nil {
		return nil, err
	}
	over, err := amount.GreaterThan(withCurrency(stats.AvailableBalance, currency))
	if err != nil {
		return nil, err
	}
	if over {
		return nil, domainpayout.ErrInsufficientBalance
	}

	method, err := domainpayout.ParseMethod(cmd.Method)
	if err != nil {
		return nil, err
	}

	seq, err := h.sequence(unit).Next(ctx)
	if err != nil {
		return nil, err
	}

	p, err := domainpayout.NewPayout(domainpayout.CreateParams{
		ID:        domainpayout.PayoutID(cmd.CommandID),
		Reference: domainpayout.FormatReference(seq),
		Host:      host,
		Amount:    amount,
		Method:    method,
		Details: domainpayout.MethodDetails{
			BankName:      cmd.BankName,
			AccountName:   cmd.AccountName,
			AccountNumber: cmd.AccountNumber,
			RoutingNumber: cmd.RoutingNumber,
			PayPalEmail:   cmd.PayPalEmail,
		},
		Notes:     cmd.Notes,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Payouts().Save(ctx, p); err != nil {
		return nil, err
	}

	pending := p.PendingEvents()
	p.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("payout requested",
			"payout_id", p.ID,
			"reference", p.Reference,
			"host_id", cmd.HostID,
			"amount_cents", p.Amount.Amount,
		)
	}
	summary := dto.MapPayoutSummary(p)
	return &summary, nil
}

func (h *RequestPayoutHandler) sequence(unit uow.UnitOfWork) domainpayout.Sequence {
	if h.Sequence != nil {
		return h.Sequence
	}
	return unit.PayoutSequence()
}

var _ commands.Handler[RequestPayoutCommand, *dto.PayoutSummary] = (*RequestPayoutHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestPayoutCommand)(nil)
var _ middleware.SelfValidating = (*RequestPayoutCommand)(nil)
