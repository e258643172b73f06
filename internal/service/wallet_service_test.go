package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/internal/core/ports/mocks"
	"github.com/gabito1451/Aframp/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeProvider is a scriptable ports.WalletProvider.
type fakeProvider struct {
	installed bool
	allowed   bool
	address   string
	network   domain.Network
}

func (p *fakeProvider) IsConnected(context.Context) (ports.ConnectedResult, error) {
	return ports.ConnectedResult{Connected: p.installed}, nil
}

func (p *fakeProvider) IsAllowed(context.Context) (ports.AllowedResult, error) {
	if !p.installed {
		return ports.AllowedResult{Error: "extension not available"}, nil
	}
	return ports.AllowedResult{Allowed: p.allowed}, nil
}

func (p *fakeProvider) SetAllowed(ctx context.Context) (ports.AllowedResult, error) {
	return p.IsAllowed(ctx)
}

func (p *fakeProvider) RequestAccess(context.Context) (ports.AddressResult, error) {
	if !p.installed || !p.allowed {
		return ports.AddressResult{Error: "user declined access"}, nil
	}
	return ports.AddressResult{Address: p.address}, nil
}

func (p *fakeProvider) GetAddress(ctx context.Context) (ports.AddressResult, error) {
	return p.RequestAccess(ctx)
}

func (p *fakeProvider) GetNetwork(context.Context) (ports.NetworkResult, error) {
	return ports.NetworkResult{Network: p.network}, nil
}

func (p *fakeProvider) SignTransaction(_ context.Context, xdr, _ string) (ports.SignResult, error) {
	return ports.SignResult{SignedTxXDR: xdr + ".sig", SignerAddress: p.address}, nil
}

// memSessionStore is an in-memory ports.SessionStore.
type memSessionStore struct {
	mu      sync.Mutex
	session *domain.RememberedSession
}

func (s *memSessionStore) Save(_ context.Context, session *domain.RememberedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *memSessionStore) Load(context.Context) (*domain.RememberedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *memSessionStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func setupWalletService(t *testing.T, provider *fakeProvider) (*WalletServiceImpl, *mocks.MockBalanceSource, *memSessionStore, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockBalanceSource(ctrl)
	store := &memSessionStore{}
	svc := NewWalletService(provider, source, store, 30*time.Second, zerolog.Nop())
	return svc, source, store, ctrl
}

func TestWalletService_Connect(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GWALLET", network: domain.NetworkTestnet}
	svc, source, store, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	// Connect fires an async balance refresh.
	source.EXPECT().FetchBalances(gomock.Any(), "GWALLET", domain.NetworkTestnet).
		Return([]domain.AssetBalance{{Asset: "XLM", Balance: "100"}}, nil).AnyTimes()

	require.NoError(t, svc.Connect(context.Background()))

	session := svc.Session()
	assert.Equal(t, domain.WalletStateConnected, session.State)
	assert.Equal(t, "GWALLET", session.PublicKey)
	assert.Equal(t, domain.NetworkTestnet, session.Network)
	assert.True(t, session.Installed)

	remembered, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, remembered)
	assert.Equal(t, "GWALLET", remembered.PublicKey)
}

func TestWalletService_Connect_NotInstalled(t *testing.T) {
	provider := &fakeProvider{installed: false}
	svc, _, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	err := svc.Connect(context.Background())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_001", appErr.Code)

	session := svc.Session()
	assert.Equal(t, domain.WalletStateError, session.State)
	assert.False(t, session.Installed)
	assert.NotEmpty(t, session.Error)
}

func TestWalletService_Connect_AccessDenied(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: false}
	svc, _, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	err := svc.Connect(context.Background())
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "WAL_002", appErr.Code)
	assert.Equal(t, domain.WalletStateError, svc.Session().State)
}

func TestWalletService_Disconnect(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GWALLET", network: domain.NetworkTestnet}
	svc, source, store, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()
	source.EXPECT().FetchBalances(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	require.NoError(t, svc.Connect(context.Background()))
	svc.Disconnect(context.Background())

	session := svc.Session()
	assert.Equal(t, domain.WalletStateDisconnected, session.State)
	assert.Empty(t, session.PublicKey)
	assert.Nil(t, session.Balances)

	remembered, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, remembered)
}

func TestWalletService_RefreshBalances(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GWALLET", network: domain.NetworkTestnet}
	svc, source, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.session = domain.WalletSession{
		State:     domain.WalletStateConnected,
		PublicKey: "GWALLET",
		Network:   domain.NetworkTestnet,
	}

	balances := []domain.AssetBalance{
		{Asset: "XLM", Balance: "100.5"},
		{Asset: "cNGN", Balance: "31.25", Issuer: "GISSUER"},
	}
	source.EXPECT().FetchBalances(gomock.Any(), "GWALLET", domain.NetworkTestnet).Return(balances, nil)

	require.NoError(t, svc.RefreshBalances(context.Background()))

	session := svc.Session()
	assert.Equal(t, balances, session.Balances)
	assert.Equal(t, domain.TimeToMillis(now), session.LastBalanceUpdate)
	assert.False(t, session.BalancesLoading)
}

func TestWalletService_RefreshBalances_DisconnectedIsNoop(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true}
	svc, _, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	// No FetchBalances expectation: a call would fail the test.
	require.NoError(t, svc.RefreshBalances(context.Background()))
}

func TestWalletService_RefreshBalances_KeepsStaleOnError(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true}
	svc, source, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	stale := []domain.AssetBalance{{Asset: "XLM", Balance: "42"}}
	svc.session = domain.WalletSession{
		State:     domain.WalletStateConnected,
		PublicKey: "GWALLET",
		Network:   domain.NetworkTestnet,
		Balances:  stale,
	}
	source.EXPECT().FetchBalances(gomock.Any(), "GWALLET", domain.NetworkTestnet).
		Return(nil, context.DeadlineExceeded)

	// Fetch failures are absorbed; the stale list survives.
	require.NoError(t, svc.RefreshBalances(context.Background()))
	assert.Equal(t, stale, svc.Session().Balances)
}

func TestWalletService_AutoReconnect_RestoresMatchingSession(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GWALLET", network: domain.NetworkTestnet}
	svc, source, store, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()
	source.EXPECT().FetchBalances(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	require.NoError(t, store.Save(context.Background(), &domain.RememberedSession{
		PublicKey: "GWALLET",
		Network:   domain.NetworkTestnet,
	}))

	svc.AutoReconnect(context.Background())

	session := svc.Session()
	assert.Equal(t, domain.WalletStateConnected, session.State)
	assert.Equal(t, "GWALLET", session.PublicKey)
}

func TestWalletService_AutoReconnect_AccountSwitchClearsSession(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GOTHER", network: domain.NetworkTestnet}
	svc, _, store, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	require.NoError(t, store.Save(context.Background(), &domain.RememberedSession{
		PublicKey: "GWALLET",
		Network:   domain.NetworkTestnet,
	}))

	svc.AutoReconnect(context.Background())

	assert.Equal(t, domain.WalletStateDisconnected, svc.Session().State)
	remembered, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, remembered)
}

func TestWalletService_AutoReconnect_NothingRemembered(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GWALLET"}
	svc, _, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	svc.AutoReconnect(context.Background())
	assert.Equal(t, domain.WalletStateDisconnected, svc.Session().State)
}

func TestWalletService_SignTransaction(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true, address: "GWALLET", network: domain.NetworkTestnet}
	svc, _, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	t.Run("not connected", func(t *testing.T) {
		_, err := svc.SignTransaction(context.Background(), "AAAA", "")
		require.Error(t, err)
		appErr, ok := err.(*apperror.AppError)
		require.True(t, ok)
		assert.Equal(t, "WAL_003", appErr.Code)
	})

	t.Run("connected", func(t *testing.T) {
		svc.session = domain.WalletSession{
			State:     domain.WalletStateConnected,
			PublicKey: "GWALLET",
			Network:   domain.NetworkTestnet,
		}
		result, err := svc.SignTransaction(context.Background(), "AAAA", "")
		require.NoError(t, err)
		assert.Equal(t, "AAAA.sig", result.SignedTxXDR)
		assert.Equal(t, "GWALLET", result.SignerAddress)
	})
}

func TestWalletService_BalanceRefreshRefCounting(t *testing.T) {
	provider := &fakeProvider{installed: true, allowed: true}
	svc, _, _, ctrl := setupWalletService(t, provider)
	defer ctrl.Finish()

	// Two observers share one timer; it survives the first Stop and dies
	// with the last.
	svc.StartBalanceRefresh()
	svc.StartBalanceRefresh()
	svc.mu.Lock()
	assert.Equal(t, 2, svc.refreshRefs)
	assert.NotNil(t, svc.refreshStop)
	svc.mu.Unlock()

	svc.StopBalanceRefresh()
	svc.mu.Lock()
	assert.NotNil(t, svc.refreshStop)
	svc.mu.Unlock()

	svc.StopBalanceRefresh()
	svc.mu.Lock()
	assert.Nil(t, svc.refreshStop)
	assert.Equal(t, 0, svc.refreshRefs)
	svc.mu.Unlock()

	// Extra stops do not underflow.
	svc.StopBalanceRefresh()
	svc.mu.Lock()
	assert.Equal(t, 0, svc.refreshRefs)
	svc.mu.Unlock()
}
