package pricing

import (
	"errors"

	"staymarket/internal/domain/shared/money"
)

var (
	ErrInvalidNights = errors.New("pricing: nights must be at least 1")
	ErrNegativeRate  = errors.New("pricing: nightly rate cannot be negative")
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
)

// FeePolicy carries the marketplace fee constants. They are configuration, not
// inline literals: the guest-facing service fee and the host-facing commission
// are separate business concepts even though both are percentages.
type FeePolicy struct {
	CleaningFee       money.Money
	ServiceFeeRateBps int64
	CommissionRateBps int64
}

// DefaultPolicy returns the marketplace defaults: 25.00 cleaning fee,
// 12% guest service fee, 10% host commission.
func DefaultPolicy(currency string) FeePolicy {
	return FeePolicy{
		CleaningFee:       money.Money{Amount: 2500, Currency: currency},
		ServiceFeeRateBps: 1200,
		CommissionRateBps: 1000,
	}
}

// Breakdown is the cost of a stay as shown to the guest. Every component is
// rounded to whole cents independently before summation.
type Breakdown struct {
	Nights      int         `json:"nights" bson:"nights"`
	NightlyRate money.Money `json:"nightly_rate" bson:"nightly_rate"`
	Subtotal    money.Money `json:"subtotal" bson:"subtotal"`
	CleaningFee money.Money `json:"cleaning_fee" bson:"cleaning_fee"`
	ServiceFee  money.Money `json:"service_fee" bson:"service_fee"`
	Total       money.Money `json:"total" bson:"total"`
}

// Quote computes the full cost breakdown for a stay. It is a pure function:
// both the guest checkout path and the host manual-entry path call it and
// persist the result into the booking snapshot.
func Quote(nightlyRate money.Money, nights int, policy FeePolicy) (Breakdown, error) {
	if nights < 1 {
		return Breakdown{}, ErrInvalidNights
	}
	if nightlyRate.IsNegative() {
		return Breakdown{}, ErrNegativeRate
	}
	if nightlyRate.Currency == "" {
		return Breakdown{}, ErrCurrencyUnset
	}

	subtotal := nightlyRate.Multiply(int64(nights))
	serviceFee, err := subtotal.ApplyRate(policy.ServiceFeeRateBps)
	if err != nil {
		return Breakdown{}, err
	}
	cleaningFee := policy.CleaningFee
	if cleaningFee.Currency == "" {
		cleaningFee.Currency = nightlyRate.Currency
	}

	total, err := subtotal.Add(cleaningFee)
	if err != nil {
		return Breakdown{}, err
	}
	total, err = total.Add(serviceFee)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Nights:      nights,
		NightlyRate: nightlyRate,
		Subtotal:    subtotal,
		CleaningFee: cleaningFee,
		ServiceFee:  serviceFee,
		Total:       total,
	}, nil
}
