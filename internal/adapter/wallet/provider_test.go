package wallet

import (
	"context"
	"testing"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(installed, allowed bool) *SimProvider {
	return NewSimProvider(config.WalletConfig{
		ProviderInstalled: installed,
		ProviderAllowed:   allowed,
		ProviderAddress:   "GWALLET",
		ProviderNetwork:   "TESTNET",
	})
}

func TestSimProvider_InstallProbe(t *testing.T) {
	ctx := context.Background()

	res, err := newProvider(true, true).IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, res.Connected)

	res, err = newProvider(false, true).IsConnected(ctx)
	require.NoError(t, err)
	assert.False(t, res.Connected)
}

func TestSimProvider_ConnectFlow(t *testing.T) {
	ctx := context.Background()
	p := newProvider(true, true)

	allowed, err := p.SetAllowed(ctx)
	require.NoError(t, err)
	assert.True(t, allowed.Allowed)
	assert.Empty(t, allowed.Error)

	access, err := p.RequestAccess(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GWALLET", access.Address)

	network, err := p.GetNetwork(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkTestnet, network.Network)
}

func TestSimProvider_ErrorsInResultObjects(t *testing.T) {
	ctx := context.Background()

	// Declined authorization: Go error stays nil, the result carries it.
	p := newProvider(true, false)
	access, err := p.RequestAccess(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, access.Error)
	assert.Empty(t, access.Address)

	// Missing extension.
	p = newProvider(false, true)
	network, err := p.GetNetwork(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, network.Error)
}

func TestSimProvider_SignTransaction(t *testing.T) {
	ctx := context.Background()
	p := newProvider(true, true)

	// Signing needs an active session first.
	result, err := p.SignTransaction(ctx, "AAAA", domain.NetworkTestnet.Passphrase())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error)

	_, err = p.RequestAccess(ctx)
	require.NoError(t, err)

	result, err = p.SignTransaction(ctx, "AAAA", domain.NetworkTestnet.Passphrase())
	require.NoError(t, err)
	assert.Empty(t, result.Error)
	assert.Equal(t, "AAAA.sig", result.SignedTxXDR)
	assert.Equal(t, "GWALLET", result.SignerAddress)

	// An empty envelope is refused.
	result, err = p.SignTransaction(ctx, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error)
}

func TestSimProvider_RevokingAuthorizationEndsSession(t *testing.T) {
	ctx := context.Background()
	p := newProvider(true, true)

	_, err := p.RequestAccess(ctx)
	require.NoError(t, err)

	p.SetAuthorized(false)
	result, err := p.SignTransaction(ctx, "AAAA", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error)
}

func TestSimProvider_SwitchAccount(t *testing.T) {
	ctx := context.Background()
	p := newProvider(true, true)
	p.SwitchAccount("GOTHER")

	addr, err := p.GetAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GOTHER", addr.Address)
}

func TestNewSimProvider_GeneratesPlaceholderAddress(t *testing.T) {
	p := NewSimProvider(config.WalletConfig{ProviderInstalled: true, ProviderAllowed: true})
	addr, err := p.GetAddress(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, addr.Address)

	network, err := p.GetNetwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkTestnet, network.Network)
}
