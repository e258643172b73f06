package domain

// WalletState is the connection state of the browser-extension wallet session.
type WalletState string

const (
	WalletStateDisconnected WalletState = "disconnected"
	WalletStateConnecting   WalletState = "connecting"
	WalletStateConnected    WalletState = "connected"
	WalletStateError        WalletState = "error"
)

// Network identifies the Stellar network the wallet is pointed at.
type Network string

const (
	NetworkPublic     Network = "PUBLIC"
	NetworkTestnet    Network = "TESTNET"
	NetworkFuturenet  Network = "FUTURENET"
	NetworkStandalone Network = "STANDALONE"
)

// Passphrase returns the network passphrase used when signing transactions.
func (n Network) Passphrase() string {
	switch n {
	case NetworkTestnet:
		return "Test SDF Network ; September 2015"
	case NetworkFuturenet:
		return "Test SDF Future Network ; October 2022"
	default:
		return "Public Global Stellar Network ; September 2015"
	}
}

// AssetBalance is one entry of an account's balance list. The list is
// replaced wholesale on every refresh, never merged.
type AssetBalance struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
	Issuer  string `json:"issuer,omitempty"`
}

// WalletSession is a snapshot of the wallet connection.
// PublicKey and Network are non-empty iff State is connected.
type WalletSession struct {
	State             WalletState    `json:"state"`
	PublicKey         string         `json:"publicKey,omitempty"`
	Network           Network        `json:"network,omitempty"`
	Installed         bool           `json:"installed"`
	Error             string         `json:"error,omitempty"`
	Balances          []AssetBalance `json:"balances"`
	BalancesLoading   bool           `json:"balancesLoading"`
	LastBalanceUpdate int64          `json:"lastBalanceUpdate,omitempty"` // Unix milliseconds
}

// IsConnected reports whether the session is usable for signing and
// balance refresh.
func (s *WalletSession) IsConnected() bool {
	return s.State == WalletStateConnected
}

// RememberedSession is the durable slice of a wallet session used for
// silent auto-reconnect on the next visit.
type RememberedSession struct {
	PublicKey string  `json:"publicKey"`
	Network   Network `json:"network"`
}
