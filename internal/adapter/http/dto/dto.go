package dto

import "encoding/json"

// CreateOrderRequest is the request body for order creation. Field names
// mirror the persisted order record.
type CreateOrderRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	FiatCurrency  string  `json:"fiatCurrency" binding:"required"`
	CryptoAsset   string  `json:"cryptoAsset" binding:"required"`
	PaymentMethod string  `json:"paymentMethod" binding:"required,oneof=bank_transfer mobile_money card"`
	WalletAddress string  `json:"walletAddress" binding:"required"`
}

// SaveDraftRequest is the request body for saving a form draft. The data
// payload is opaque to the server.
type SaveDraftRequest struct {
	Data json.RawMessage `json:"data" binding:"required"`
}

// DraftResponse is the response body for a loaded draft.
type DraftResponse struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// SignRequest is the request body for transaction signing. An empty
// networkPassphrase uses the connected network's.
type SignRequest struct {
	XDR               string `json:"xdr" binding:"required"`
	NetworkPassphrase string `json:"networkPassphrase"`
}

// OrderStatsResponse is the response for archived order statistics.
type OrderStatsResponse struct {
	Total           int64   `json:"total"`
	Completed       int64   `json:"completed"`
	Failed          int64   `json:"failed"`
	FiatVolume      float64 `json:"fiatVolume"`
	CryptoDelivered float64 `json:"cryptoDelivered"`
}
