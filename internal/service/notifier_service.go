package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gabito1451/Aframp/internal/core/domain"

	"github.com/rs/zerolog"
)

// NotifierService implements ports.Notifier: a best-effort POST to a
// notification endpoint when an order completes. No endpoint configured
// means completions are only logged.
type NotifierService struct {
	client *http.Client
	url    string
	log    zerolog.Logger
}

// NewNotifierService creates a NotifierService.
func NewNotifierService(client *http.Client, url string, log zerolog.Logger) *NotifierService {
	return &NotifierService{client: client, url: url, log: log}
}

type completionPayload struct {
	OrderID         string  `json:"orderId"`
	Amount          float64 `json:"amount"`
	Asset           string  `json:"asset"`
	TransactionHash string  `json:"transactionHash"`
}

// OrderCompleted notifies the user that crypto was delivered. Failures are
// logged and swallowed; delivery is not guaranteed.
func (n *NotifierService) OrderCompleted(ctx context.Context, order *domain.Order) {
	n.log.Info().
		Str("order_id", order.ID).
		Float64("crypto_amount", order.CryptoAmount).
		Str("asset", string(order.CryptoAsset)).
		Msg("order completed")

	if n.url == "" {
		return
	}

	body, err := json.Marshal(completionPayload{
		OrderID:         order.ID,
		Amount:          order.CryptoAmount,
		Asset:           string(order.CryptoAsset),
		TransactionHash: order.TransactionHash,
	})
	if err != nil {
		n.log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to marshal completion notification")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to build completion notification")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to send completion notification")
		return
	}
	resp.Body.Close()
}
