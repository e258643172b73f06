package ports

import (
	"context"

	"github.com/gabito1451/Aframp/internal/core/domain"
)

// Settlement is the seam to the settlement backend: trustline inspection,
// stablecoin minting, on-chain transfer, and confirmation polling. The
// bundled implementation is a latency-injecting simulator; a real backend
// can be swapped in without touching the progression engine's control flow.
type Settlement interface {
	CheckTrustline(ctx context.Context, address string, asset domain.CryptoAsset) (bool, error)
	MintStablecoin(ctx context.Context, amount float64, asset domain.CryptoAsset) (string, error)
	SendPayment(ctx context.Context, destination string, amount float64, asset domain.CryptoAsset) (string, error)
	CheckTransactionStatus(ctx context.Context, txRef string) (domain.TxStatus, error)
}

// Result objects returned by the wallet provider. The provider reports
// failures through the Error field rather than a Go error; a present Error
// must be treated as a failure at every call site.

// ConnectedResult is the reply to IsConnected.
type ConnectedResult struct {
	Connected bool
	Error     string
}

// AllowedResult is the reply to IsAllowed / SetAllowed.
type AllowedResult struct {
	Allowed bool
	Error   string
}

// AddressResult is the reply to RequestAccess / GetAddress.
type AddressResult struct {
	Address string
	Error   string
}

// NetworkResult is the reply to GetNetwork.
type NetworkResult struct {
	Network domain.Network
	Error   string
}

// SignResult is the reply to SignTransaction.
type SignResult struct {
	SignedTxXDR   string `json:"signedTxXdr"`
	SignerAddress string `json:"signerAddress,omitempty"`
	Error         string `json:"error,omitempty"`
}

// WalletProvider is the browser-extension wallet interface. The Go error
// return carries transport failures only; provider-level refusals come back
// in the result object.
type WalletProvider interface {
	IsConnected(ctx context.Context) (ConnectedResult, error)
	IsAllowed(ctx context.Context) (AllowedResult, error)
	SetAllowed(ctx context.Context) (AllowedResult, error)
	RequestAccess(ctx context.Context) (AddressResult, error)
	GetAddress(ctx context.Context) (AddressResult, error)
	GetNetwork(ctx context.Context) (NetworkResult, error)
	SignTransaction(ctx context.Context, xdr string, networkPassphrase string) (SignResult, error)
}

// BalanceSource fetches an account's balances from the network. A missing
// account (unfunded) yields a zero balance, not an error.
type BalanceSource interface {
	FetchBalances(ctx context.Context, account string, network domain.Network) ([]domain.AssetBalance, error)
}

// --- Service Ports (Business Logic) ---

// CreateOrderInput holds validated input for order creation.
type CreateOrderInput struct {
	ID            string // optional; generated when empty
	Amount        float64
	FiatCurrency  domain.FiatCurrency
	CryptoAsset   domain.CryptoAsset
	PaymentMethod domain.PaymentMethod
	WalletAddress string
}

// OrderService defines order creation and lookup.
type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	// GetOrCreate synthesizes a demo order for a missing id. Only wired in
	// demo mode; production callers use Get and surface the miss.
	GetOrCreate(ctx context.Context, id string) (*domain.Order, error)
}

// ProgressionService advances a single order one step if a transition is
// due. It never returns settlement failures as errors; those become the
// failed status on the order.
type ProgressionService interface {
	Tick(ctx context.Context, orderID string) (*domain.Order, error)
}

// OrderTracker owns the recurring tick schedule per tracked order.
type OrderTracker interface {
	Track(orderID string)
	Untrack(orderID string)
	Close()
}

// WalletService is the wallet connection state machine.
type WalletService interface {
	CheckInstalled(ctx context.Context) bool
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	RefreshBalances(ctx context.Context) error
	AutoReconnect(ctx context.Context)
	Session() domain.WalletSession
	SignTransaction(ctx context.Context, xdr string, networkPassphrase string) (SignResult, error)
	// StartBalanceRefresh and StopBalanceRefresh are ref-counted; at most
	// one refresh timer runs process-wide regardless of observer count.
	StartBalanceRefresh()
	StopBalanceRefresh()
}

// StatusSubscriber hands out a feed of status changes for one order. The
// returned cancel func releases the subscription. This is the push seam a
// real backend would serve instead of timer polling.
type StatusSubscriber interface {
	Subscribe(orderID string) (<-chan domain.Order, func())
}

// StatusPublisher pushes an updated order to subscribers.
type StatusPublisher interface {
	Publish(order domain.Order)
}

// Notifier delivers best-effort user notifications for terminal orders.
type Notifier interface {
	OrderCompleted(ctx context.Context, order *domain.Order)
}
