// Package horizon fetches account balances from a Stellar Horizon server.
package horizon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/core/domain"

	"github.com/rs/zerolog"
)

// nativeSymbol is the display code for the network's native asset.
const nativeSymbol = "XLM"

// Client implements ports.BalanceSource against the Horizon accounts API.
type Client struct {
	publicURL  string
	testnetURL string
	http       *http.Client
	log        zerolog.Logger
}

// NewClient creates a Horizon client.
func NewClient(cfg config.HorizonConfig, log zerolog.Logger) *Client {
	return &Client{
		publicURL:  cfg.PublicURL,
		testnetURL: cfg.TestnetURL,
		http:       &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// accountResource is the slice of the Horizon account response we consume.
type accountResource struct {
	Balances []struct {
		AssetType   string `json:"asset_type"`
		AssetCode   string `json:"asset_code"`
		AssetIssuer string `json:"asset_issuer"`
		Balance     string `json:"balance"`
	} `json:"balances"`
}

// FetchBalances returns the account's balance list. An unfunded account
// (404) maps to a single zero native balance rather than an error.
func (c *Client) FetchBalances(ctx context.Context, account string, network domain.Network) ([]domain.AssetBalance, error) {
	url := fmt.Sprintf("%s/accounts/%s", c.baseURL(network), account)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build horizon request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: %w", account, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Account not funded yet.
		return []domain.AssetBalance{{Asset: nativeSymbol, Balance: "0"}}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch account %s: status %d", account, resp.StatusCode)
	}

	var acct accountResource
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", account, err)
	}

	balances := make([]domain.AssetBalance, 0, len(acct.Balances))
	for _, b := range acct.Balances {
		if b.AssetType == "native" {
			balances = append(balances, domain.AssetBalance{Asset: nativeSymbol, Balance: b.Balance})
			continue
		}
		balances = append(balances, domain.AssetBalance{
			Asset:   b.AssetCode,
			Balance: b.Balance,
			Issuer:  b.AssetIssuer,
		})
	}
	return balances, nil
}

func (c *Client) baseURL(network domain.Network) string {
	if network == domain.NetworkTestnet {
		return c.testnetURL
	}
	return c.publicURL
}
