package payout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staymarket/internal/domain/shared/money"
)

func TestFormatReference(t *testing.T) {
	require.Equal(t, "PO-001", FormatReference(1))
	require.Equal(t, "PO-042", FormatReference(42))
	require.Equal(t, "PO-1205", FormatReference(1205))
}

func TestNewPayoutValidatesMethodDetails(t *testing.T) {
	base := CreateParams{
		ID:        "p1",
		Reference: "PO-001",
		Host:      "host-1",
		Amount:    money.Must(10000, "USD"),
		CreatedAt: time.Now(),
	}

	bank := base
	bank.Method = MethodBankTransfer
	_, err := NewPayout(bank)
	require.ErrorIs(t, err, ErrBankDetailsMissing)

	bank.Details = MethodDetails{BankName: "First National", AccountNumber: "000123", AccountName: "J Smith"}
	p, err := NewPayout(bank)
	require.NoError(t, err)
	require.Equal(t, StatusPending, p.Status)
	require.Len(t, p.PendingEvents(), 1)

	paypal := base
	paypal.Method = MethodPayPal
	_, err = NewPayout(paypal)
	require.ErrorIs(t, err, ErrPayPalEmailMissing)

	paypal.Details = MethodDetails{PayPalEmail: "host@example.com"}
	_, err = NewPayout(paypal)
	require.NoError(t, err)
}

func TestNewPayoutRejectsBadAmountAndMethod(t *testing.T) {
	params := CreateParams{
		ID:        "p1",
		Host:      "host-1",
		Amount:    money.Money{Amount: 0, Currency: "USD"},
		Method:    MethodPayPal,
		Details:   MethodDetails{PayPalEmail: "host@example.com"},
		CreatedAt: time.Now(),
	}
	_, err := NewPayout(params)
	require.ErrorIs(t, err, ErrInvalidAmount)

	params.Amount = money.Must(100, "USD")
	params.Method = "wire"
	_, err = NewPayout(params)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" Bank_Transfer ")
	require.NoError(t, err)
	require.Equal(t, MethodBankTransfer, m)

	_, err = ParseMethod("venmo")
	require.ErrorIs(t, err, ErrUnknownMethod)
}
