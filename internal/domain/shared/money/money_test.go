package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	_, err := New(100, "us")
	require.ErrorIs(t, err, ErrInvalidCurrency)

	m, err := New(100, "usd")
	require.NoError(t, err)
	require.Equal(t, "USD", m.Currency)
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	usd := Must(100, "USD")
	eur := Must(100, "EUR")
	_, err := usd.Add(eur)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestApplyRateRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"twelve percent of 609.00", 60900, 1200, 7308},
		{"twelve percent of 300.00", 30000, 1200, 3600},
		{"ten percent of 0.05 rounds up", 5, 1000, 1},
		{"ten percent of 0.04 rounds down", 4, 1000, 0},
		{"zero amount", 0, 1200, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Must(tc.amount, "USD").ApplyRate(tc.bps)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Amount)
		})
	}
}

func TestApplyRateRejectsNegative(t *testing.T) {
	_, err := Money{Amount: -100, Currency: "USD"}.ApplyRate(1200)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestClampZero(t *testing.T) {
	require.Equal(t, int64(0), Money{Amount: -500, Currency: "USD"}.ClampZero().Amount)
	require.Equal(t, int64(500), Money{Amount: 500, Currency: "USD"}.ClampZero().Amount)
}

func TestString(t *testing.T) {
	require.Equal(t, "707.08 USD", Must(70708, "USD").String())
	require.Equal(t, "-0.05 USD", Money{Amount: -5, Currency: "USD"}.String())
}
