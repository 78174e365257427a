package earnings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"staymarket/internal/domain/pricing"
	"staymarket/internal/domain/shared/money"
)

func usd(amount int64) money.Money { return money.Must(amount, "USD") }

func TestComputeBasicLedger(t *testing.T) {
	// 1000.00 gross, 10% commission, 200.00 paid out, 100.00 pending.
	stats, err := Compute(usd(100000), usd(20000), usd(10000), pricing.DefaultPolicy("USD"))
	require.NoError(t, err)
	require.Equal(t, int64(100000), stats.TotalEarnings.Amount)
	require.Equal(t, int64(10000), stats.Commission.Amount)
	require.Equal(t, int64(90000), stats.NetEarnings.Amount)
	require.Equal(t, int64(60000), stats.AvailableBalance.Amount)
}

func TestComputeZeroGross(t *testing.T) {
	stats, err := Compute(usd(0), usd(0), usd(0), pricing.DefaultPolicy("USD"))
	require.NoError(t, err)
	require.True(t, stats.AvailableBalance.IsZero())
	require.True(t, stats.NetEarnings.IsZero())
}

func TestComputeBalanceNeverNegative(t *testing.T) {
	// Payouts exceed net earnings: balance clamps at zero.
	stats, err := Compute(usd(10000), usd(9500), usd(1000), pricing.DefaultPolicy("USD"))
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.AvailableBalance.Amount)
}

func TestComputeCommissionRoundsHalfUp(t *testing.T) {
	// 0.05 gross at 10% -> 0.01 commission after half-up rounding.
	stats, err := Compute(usd(5), usd(0), usd(0), pricing.DefaultPolicy("USD"))
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Commission.Amount)
	require.Equal(t, int64(4), stats.NetEarnings.Amount)
}

func TestZero(t *testing.T) {
	stats := Zero("USD")
	require.True(t, stats.AvailableBalance.IsZero())
	require.Equal(t, "USD", stats.AvailableBalance.Currency)
}
