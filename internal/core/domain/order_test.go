package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"created to awaiting_payment", OrderStatusCreated, OrderStatusAwaitingPayment, true},
		{"created skips to payment_received", OrderStatusCreated, OrderStatusPaymentReceived, true},
		{"payment_received to minting", OrderStatusPaymentReceived, OrderStatusMinting, true},
		{"minting to transferring", OrderStatusMinting, OrderStatusTransferring, true},
		{"transferring to completed", OrderStatusTransferring, OrderStatusCompleted, true},
		{"no going backwards", OrderStatusMinting, OrderStatusPaymentReceived, false},
		{"no self transition", OrderStatusMinting, OrderStatusMinting, false},
		{"completed only from transferring", OrderStatusMinting, OrderStatusCompleted, false},
		{"failed from created", OrderStatusCreated, OrderStatusFailed, true},
		{"failed from transferring", OrderStatusTransferring, OrderStatusFailed, true},
		{"completed is terminal", OrderStatusCompleted, OrderStatusFailed, false},
		{"failed is terminal", OrderStatusFailed, OrderStatusCreated, false},
		{"unknown status", OrderStatus("shipped"), OrderStatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
	assert.False(t, OrderStatusCreated.IsTerminal())
	assert.False(t, OrderStatusTransferring.IsTerminal())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusCreated.Valid())
	assert.True(t, OrderStatusFailed.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestConvertToCrypto(t *testing.T) {
	// The canonical example: 50,000 NGN at 1600 NGN/cNGN buys 31.25 cNGN.
	assert.Equal(t, 31.25, ConvertToCrypto(50000, 1600))
	assert.Equal(t, 0.0, ConvertToCrypto(50000, 0))
	assert.Equal(t, 0.0, ConvertToCrypto(-1, 1600))
	// Rounded to 7 decimal places.
	assert.Equal(t, 0.0806452, ConvertToCrypto(1, 12.4))
}

func TestQuoteFees(t *testing.T) {
	t.Run("bank transfer has no processing fee", func(t *testing.T) {
		fees := QuoteFees(50000, PaymentMethodBankTransfer)
		assert.Equal(t, 0.0, fees.ProcessingFee)
		assert.Equal(t, 15.0, fees.NetworkFee)
		assert.Equal(t, 15.0, fees.TotalFees)
		assert.Equal(t, 50015.0, fees.TotalCost)
	})

	t.Run("mobile money charges 1.5%", func(t *testing.T) {
		fees := QuoteFees(10000, PaymentMethodMobileMoney)
		assert.Equal(t, 150.0, fees.ProcessingFee)
		assert.Equal(t, 165.0, fees.TotalFees)
		assert.Equal(t, 10165.0, fees.TotalCost)
	})

	t.Run("card charges 2.9%", func(t *testing.T) {
		fees := QuoteFees(10000, PaymentMethodCard)
		assert.Equal(t, 290.0, fees.ProcessingFee)
		assert.Equal(t, 305.0, fees.TotalFees)
		assert.Equal(t, 10305.0, fees.TotalCost)
	})
}

func TestOrder_Age(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{CreatedAt: TimeToMillis(created)}
	assert.Equal(t, 45*time.Second, o.Age(created.Add(45*time.Second)))
}

func TestOrder_PaymentWindowExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{ExpiresAt: TimeToMillis(now.Add(15 * time.Minute))}
	assert.False(t, o.PaymentWindowExpired(now))
	assert.False(t, o.PaymentWindowExpired(now.Add(15*time.Minute)))
	assert.True(t, o.PaymentWindowExpired(now.Add(15*time.Minute+time.Second)))

	unset := &Order{}
	assert.False(t, unset.PaymentWindowExpired(now))
}

func TestOrder_JSONShape(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := Order{
		ID:            "ord_123",
		CreatedAt:     TimeToMillis(created),
		ExpiresAt:     TimeToMillis(created.Add(15 * time.Minute)),
		FiatCurrency:  FiatNGN,
		CryptoAsset:   AssetCNGN,
		PaymentMethod: PaymentMethodBankTransfer,
		Amount:        50000,
		ExchangeRate:  1600,
		CryptoAmount:  31.25,
		Fees:          QuoteFees(50000, PaymentMethodBankTransfer),
		WalletAddress: "GABC",
		Status:        OrderStatusCreated,
	}

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	// Keys are camelCase and timestamps are Unix milliseconds; the web
	// client reads this record verbatim.
	assert.Equal(t, "ord_123", m["id"])
	assert.Equal(t, float64(o.CreatedAt), m["createdAt"])
	assert.Equal(t, "bank_transfer", m["paymentMethod"])
	assert.Equal(t, "cNGN", m["cryptoAsset"])
	assert.Contains(t, m, "fees")
	assert.NotContains(t, m, "transactionHash")
	assert.NotContains(t, m, "completedAt")
}

func TestNetwork_Passphrase(t *testing.T) {
	assert.Equal(t, "Test SDF Network ; September 2015", NetworkTestnet.Passphrase())
	assert.Equal(t, "Public Global Stellar Network ; September 2015", NetworkPublic.Passphrase())
	// Unknown networks default to the public passphrase.
	assert.Equal(t, "Public Global Stellar Network ; September 2015", Network("").Passphrase())
}

func TestFormDraft_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := &FormDraft{Timestamp: TimeToMillis(now)}
	assert.False(t, d.Expired(now.Add(14*time.Minute)))
	assert.True(t, d.Expired(now.Add(16*time.Minute)))
}
