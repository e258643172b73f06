// Package wallet provides a simulated browser-extension wallet provider.
// It mirrors the Freighter API surface: every call returns a result object
// that carries an error field instead of failing with a Go error, and call
// sites must honor that field.
package wallet

import (
	"context"
	"sync"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"

	"github.com/google/uuid"
)

// SimProvider implements ports.WalletProvider with configurable behavior.
type SimProvider struct {
	mu        sync.Mutex
	installed bool
	allowed   bool
	connected bool
	address   string
	network   domain.Network
}

// NewSimProvider creates a provider from config. An empty address gets a
// generated placeholder key.
func NewSimProvider(cfg config.WalletConfig) *SimProvider {
	address := cfg.ProviderAddress
	if address == "" {
		address = "G" + uuid.NewString()
	}
	network := domain.Network(cfg.ProviderNetwork)
	if network == "" {
		network = domain.NetworkTestnet
	}
	return &SimProvider{
		installed: cfg.ProviderInstalled,
		allowed:   cfg.ProviderAllowed,
		address:   address,
		network:   network,
	}
}

// IsConnected reports whether the extension is present and responding. It
// says nothing about authorization or an active session; that is how the
// real extension answers the install probe.
func (p *SimProvider) IsConnected(ctx context.Context) (ports.ConnectedResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ports.ConnectedResult{Connected: p.installed}, nil
}

// IsAllowed reports whether the app is authorized.
func (p *SimProvider) IsAllowed(ctx context.Context) (ports.AllowedResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed {
		return ports.AllowedResult{Error: "extension not available"}, nil
	}
	return ports.AllowedResult{Allowed: p.allowed}, nil
}

// SetAllowed asks the user to authorize the app.
func (p *SimProvider) SetAllowed(ctx context.Context) (ports.AllowedResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed {
		return ports.AllowedResult{Error: "extension not available"}, nil
	}
	return ports.AllowedResult{Allowed: p.allowed}, nil
}

// RequestAccess prompts for access and returns the active address.
func (p *SimProvider) RequestAccess(ctx context.Context) (ports.AddressResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed {
		return ports.AddressResult{Error: "extension not available"}, nil
	}
	if !p.allowed {
		return ports.AddressResult{Error: "user declined access"}, nil
	}
	p.connected = true
	return ports.AddressResult{Address: p.address}, nil
}

// GetAddress returns the active address without prompting.
func (p *SimProvider) GetAddress(ctx context.Context) (ports.AddressResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed || !p.allowed {
		return ports.AddressResult{Error: "not authorized"}, nil
	}
	return ports.AddressResult{Address: p.address}, nil
}

// GetNetwork returns the network the extension is pointed at.
func (p *SimProvider) GetNetwork(ctx context.Context) (ports.NetworkResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed {
		return ports.NetworkResult{Error: "extension not available"}, nil
	}
	return ports.NetworkResult{Network: p.network}, nil
}

// SignTransaction signs an XDR envelope with the active key.
func (p *SimProvider) SignTransaction(ctx context.Context, xdr string, networkPassphrase string) (ports.SignResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed || !p.allowed || !p.connected {
		return ports.SignResult{Error: "wallet is locked or not connected"}, nil
	}
	if xdr == "" {
		return ports.SignResult{Error: "empty transaction envelope"}, nil
	}
	return ports.SignResult{
		SignedTxXDR:   xdr + ".sig",
		SignerAddress: p.address,
	}, nil
}

// Test hooks: flip the simulated extension's state.

// SetInstalled toggles extension presence.
func (p *SimProvider) SetInstalled(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.installed = v
}

// SetAuthorized toggles the app's authorization.
func (p *SimProvider) SetAuthorized(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowed = v
	if !v {
		p.connected = false
	}
}

// SwitchAccount changes the active address, as if the user picked another
// account in the extension.
func (p *SimProvider) SwitchAccount(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.address = address
}
