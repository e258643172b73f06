package domain

import (
	"math"
	"time"
)

// FiatCurrency is an ISO-style code for a supported local currency.
type FiatCurrency string

const (
	FiatNGN FiatCurrency = "NGN"
	FiatKES FiatCurrency = "KES"
	FiatGHS FiatCurrency = "GHS"
	FiatZAR FiatCurrency = "ZAR"
	FiatUGX FiatCurrency = "UGX"
)

// CryptoAsset is the code of a stablecoin (or native asset) deliverable on-chain.
type CryptoAsset string

const (
	AssetCNGN CryptoAsset = "cNGN"
	AssetCKES CryptoAsset = "cKES"
	AssetCGHS CryptoAsset = "cGHS"
	AssetUSDC CryptoAsset = "USDC"
	AssetXLM  CryptoAsset = "XLM"
)

// PaymentMethod is how the user settles the fiat leg of an order.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCard         PaymentMethod = "card"
)

// OrderStatus is the lifecycle state of an on-ramp order.
type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "created"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaymentReceived OrderStatus = "payment_received"
	OrderStatusMinting         OrderStatus = "minting"
	OrderStatusTransferring    OrderStatus = "transferring"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusFailed          OrderStatus = "failed"
)

// statusRank fixes the forward ordering of the lifecycle. failed sits outside
// the sequence and is reachable from any non-terminal state.
var statusRank = map[OrderStatus]int{
	OrderStatusCreated:         0,
	OrderStatusAwaitingPayment: 1,
	OrderStatusPaymentReceived: 2,
	OrderStatusMinting:         3,
	OrderStatusTransferring:    4,
	OrderStatusCompleted:       5,
}

// IsTerminal returns true if no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusFailed {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next respects the
// lifecycle: strictly forward along the sequence, completed only from
// transferring, failed from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusFailed {
		return true
	}
	if next == OrderStatusCompleted {
		return s == OrderStatusTransferring
	}
	from, okFrom := statusRank[s]
	to, okTo := statusRank[next]
	return okFrom && okTo && to > from
}

// TxStatus is the confirmation state of an on-chain transaction.
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
)

// FeeBreakdown is computed once at order creation and never recomputed.
type FeeBreakdown struct {
	ProcessingFee float64 `json:"processingFee"`
	NetworkFee    float64 `json:"networkFee"`
	TotalFees     float64 `json:"totalFees"`
	TotalCost     float64 `json:"totalCost"`
}

// Order is a single fiat-to-crypto purchase request. The JSON shape is the
// persisted key-value record consumed by the web client; keys and
// millisecond timestamps must stay stable.
type Order struct {
	ID              string        `json:"id"`
	CreatedAt       int64         `json:"createdAt"` // Unix milliseconds
	ExpiresAt       int64         `json:"expiresAt"` // Payment-window expiry, Unix milliseconds
	FiatCurrency    FiatCurrency  `json:"fiatCurrency"`
	CryptoAsset     CryptoAsset   `json:"cryptoAsset"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Amount          float64       `json:"amount"`
	ExchangeRate    float64       `json:"exchangeRate"`
	CryptoAmount    float64       `json:"cryptoAmount"`
	Fees            FeeBreakdown  `json:"fees"`
	WalletAddress   string        `json:"walletAddress"`
	Status          OrderStatus   `json:"status"`
	TransactionHash string        `json:"transactionHash,omitempty"`
	CompletedAt     *int64        `json:"completedAt,omitempty"` // Unix milliseconds, terminal success only
	Version         int64         `json:"version"`
}

// IsTerminal returns true if the order reached completed or failed.
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// Age returns how long the order has existed as of now.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(MillisToTime(o.CreatedAt))
}

// PaymentWindowExpired reports whether the fiat payment window has lapsed.
func (o *Order) PaymentWindowExpired(now time.Time) bool {
	return o.ExpiresAt > 0 && now.After(MillisToTime(o.ExpiresAt))
}

// TimeToMillis converts a time to Unix milliseconds.
func TimeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// MillisToTime converts Unix milliseconds to a time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ConvertToCrypto returns the crypto amount bought for a fiat amount at the
// given rate (fiat units per crypto unit), rounded to 7 decimal places.
func ConvertToCrypto(amount, rate float64) float64 {
	if rate <= 0 || amount <= 0 {
		return 0
	}
	return math.Round(amount/rate*1e7) / 1e7
}

// Processing fee rates by payment method. Bank transfers are free; card and
// mobile money carry acquirer costs.
const (
	mobileMoneyFeeRate = 0.015
	cardFeeRate        = 0.029
	flatNetworkFee     = 15.0
)

// QuoteFees computes the fee breakdown for a fiat amount and payment method.
func QuoteFees(amount float64, method PaymentMethod) FeeBreakdown {
	var processing float64
	switch method {
	case PaymentMethodMobileMoney:
		processing = round2(amount * mobileMoneyFeeRate)
	case PaymentMethodCard:
		processing = round2(amount * cardFeeRate)
	default:
		processing = 0
	}

	total := round2(processing + flatNetworkFee)
	return FeeBreakdown{
		ProcessingFee: processing,
		NetworkFee:    flatNetworkFee,
		TotalFees:     total,
		TotalCost:     round2(amount + total),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
