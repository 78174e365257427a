package earnings

import (
	"staymarket/internal/domain/pricing"
	"staymarket/internal/domain/shared/money"
)

// Stats is the host's earnings ledger snapshot. All figures derive from
// completed bookings and the payout ledger; nothing here is stored.
type Stats struct {
	TotalEarnings    money.Money `json:"total_earnings"`
	Commission       money.Money `json:"commission"`
	NetEarnings      money.Money `json:"net_earnings"`
	CompletedPayouts money.Money `json:"completed_payouts"`
	PendingPayouts   money.Money `json:"pending_payouts"`
	AvailableBalance money.Money `json:"available_balance"`
}

// Compute derives the ledger snapshot. gross is the sum of completed-booking
// totals for the host; the commission uses the policy's commission rate (not
// the guest service fee, which is a different concept). The available balance
// nets out completed and in-flight payouts and never goes below zero.
func Compute(gross, completedPayouts, pendingPayouts money.Money, policy pricing.FeePolicy) (Stats, error) {
	commission, err := gross.ApplyRate(policy.CommissionRateBps)
	if err != nil {
		return Stats{}, err
	}
	net, err := gross.Sub(commission)
	if err != nil {
		return Stats{}, err
	}
	balance, err := net.Sub(completedPayouts)
	if err != nil {
		return Stats{}, err
	}
	balance, err = balance.Sub(pendingPayouts)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalEarnings:    gross,
		Commission:       commission,
		NetEarnings:      net,
		CompletedPayouts: completedPayouts,
		PendingPayouts:   pendingPayouts,
		AvailableBalance: balance.ClampZero(),
	}, nil
}

// Zero returns an empty ledger for hosts with no completed bookings.
func Zero(currency string) Stats {
	z := money.Money{Amount: 0, Currency: currency}
	return Stats{
		TotalEarnings:    z,
		Commission:       z,
		NetEarnings:      z,
		CompletedPayouts: z,
		PendingPayouts:   z,
		AvailableBalance: z,
	}
}
