package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"staymarket/internal/domain/shared/money"
)

func TestQuoteSevenNights(t *testing.T) {
	got, err := Quote(money.Must(8700, "USD"), 7, DefaultPolicy("USD"))
	require.NoError(t, err)
	require.Equal(t, int64(60900), got.Subtotal.Amount)
	require.Equal(t, int64(2500), got.CleaningFee.Amount)
	require.Equal(t, int64(7308), got.ServiceFee.Amount)
	require.Equal(t, int64(70708), got.Total.Amount)
}

func TestQuoteThreeNights(t *testing.T) {
	got, err := Quote(money.Must(10000, "USD"), 3, DefaultPolicy("USD"))
	require.NoError(t, err)
	require.Equal(t, int64(30000), got.Subtotal.Amount)
	require.Equal(t, int64(2500), got.CleaningFee.Amount)
	require.Equal(t, int64(3600), got.ServiceFee.Amount)
	require.Equal(t, int64(36100), got.Total.Amount)
}

func TestQuoteTotalInvariant(t *testing.T) {
	policy := DefaultPolicy("USD")
	rates := []int64{0, 1, 99, 8700, 12345, 999999}
	for _, rate := range rates {
		for nights := 1; nights <= 14; nights++ {
			got, err := Quote(money.Must(rate, "USD"), nights, policy)
			require.NoError(t, err)
			want := got.Subtotal.Amount + got.CleaningFee.Amount + got.ServiceFee.Amount
			require.Equal(t, want, got.Total.Amount, "rate=%d nights=%d", rate, nights)
		}
	}
}

func TestQuoteRejectsInvalidInput(t *testing.T) {
	policy := DefaultPolicy("USD")

	_, err := Quote(money.Must(8700, "USD"), 0, policy)
	require.ErrorIs(t, err, ErrInvalidNights)

	_, err = Quote(money.Money{Amount: -100, Currency: "USD"}, 2, policy)
	require.ErrorIs(t, err, ErrNegativeRate)

	_, err = Quote(money.Money{Amount: 100}, 2, policy)
	require.ErrorIs(t, err, ErrCurrencyUnset)
}

func TestQuoteIsDeterministic(t *testing.T) {
	policy := DefaultPolicy("USD")
	first, err := Quote(money.Must(8700, "USD"), 7, policy)
	require.NoError(t, err)
	second, err := Quote(money.Must(8700, "USD"), 7, policy)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
