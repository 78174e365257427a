package dto

import (
	"time"

	"staymarket/internal/domain/earnings"
	domainpayout "staymarket/internal/domain/payout"
)

type EarningsStats struct {
	TotalEarnings    MoneyDTO `json:"total_earnings"`
	Commission       MoneyDTO `json:"commission"`
	NetEarnings      MoneyDTO `json:"net_earnings"`
	CompletedPayouts MoneyDTO `json:"completed_payouts"`
	PendingPayouts   MoneyDTO `json:"pending_payouts"`
	AvailableBalance MoneyDTO `json:"available_balance"`
}

func MapEarningsStats(s earnings.Stats) EarningsStats {
	return EarningsStats{
		TotalEarnings:    MapMoney(s.TotalEarnings),
		Commission:       MapMoney(s.Commission),
		NetEarnings:      MapMoney(s.NetEarnings),
		CompletedPayouts: MapMoney(s.CompletedPayouts),
		PendingPayouts:   MapMoney(s.PendingPayouts),
		AvailableBalance: MapMoney(s.AvailableBalance),
	}
}

// HostEarnings pairs the ledger snapshot with a page of qualifying bookings.
type HostEarnings struct {
	Stats    EarningsStats    `json:"stats"`
	Bookings []BookingSummary `json:"bookings"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type PayoutSummary struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Amount      MoneyDTO  `json:"amount"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	BankName    string    `json:"bank_name,omitempty"`
	AccountName string    `json:"account_name,omitempty"`
	PayPalEmail string    `json:"paypal_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func MapPayoutSummary(p *domainpayout.Payout) PayoutSummary {
	return PayoutSummary{
		ID:          string(p.ID),
		Reference:   p.Reference,
		Amount:      MapMoney(p.Amount),
		Method:      string(p.Method),
		Status:      string(p.Status),
		Notes:       p.Notes,
		BankName:    p.Details.BankName,
		AccountName: p.Details.AccountName,
		PayPalEmail: p.Details.PayPalEmail,
		CreatedAt:   p.CreatedAt,
	}
}

type PayoutCollection struct {
	Items []PayoutSummary `json:"items"`
}
