package service

import (
	"context"
	"sync"
	"time"

	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"

	"github.com/rs/zerolog"
)

// refreshTimeout bounds one background balance fetch.
const refreshTimeout = 10 * time.Second

// WalletServiceImpl is the wallet connection state machine. It owns the
// single in-memory session, drives the provider through the connect flow,
// remembers sessions for silent reconnect, and runs the shared balance
// refresh timer. Implements ports.WalletService.
type WalletServiceImpl struct {
	provider ports.WalletProvider
	source   ports.BalanceSource
	sessions ports.SessionStore
	log      zerolog.Logger
	interval time.Duration

	mu          sync.Mutex
	session     domain.WalletSession
	refreshRefs int
	refreshStop chan struct{}

	now func() time.Time
}

// NewWalletService creates a WalletServiceImpl. interval is the period of
// the shared balance refresh timer.
func NewWalletService(
	provider ports.WalletProvider,
	source ports.BalanceSource,
	sessions ports.SessionStore,
	interval time.Duration,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		provider: provider,
		source:   source,
		sessions: sessions,
		interval: interval,
		log:      log,
		session:  domain.WalletSession{State: domain.WalletStateDisconnected},
		now:      time.Now,
	}
}

// CheckInstalled probes for the extension and records the result on the
// session. A transport failure reads as not installed.
func (s *WalletServiceImpl) CheckInstalled(ctx context.Context) bool {
	res, err := s.provider.IsConnected(ctx)
	installed := err == nil && res.Error == "" && res.Connected

	s.mu.Lock()
	s.session.Installed = installed
	s.mu.Unlock()
	return installed
}

// Connect runs the full connect flow: install probe, authorization prompt,
// access request, network detection. A second Connect while one is underway
// is a no-op. On success the session is remembered and a background balance
// refresh is kicked off.
func (s *WalletServiceImpl) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.session.State == domain.WalletStateConnecting {
		s.mu.Unlock()
		return nil
	}
	s.session.State = domain.WalletStateConnecting
	s.session.Error = ""
	s.mu.Unlock()

	if !s.CheckInstalled(ctx) {
		appErr := apperror.ErrWalletNotInstalled()
		s.setError(appErr.Message)
		return appErr
	}

	allowed, err := s.provider.SetAllowed(ctx)
	if err != nil || allowed.Error != "" || !allowed.Allowed {
		appErr := apperror.ErrWalletAccessDenied()
		s.setError(appErr.Message)
		return appErr
	}

	access, err := s.provider.RequestAccess(ctx)
	if err != nil || access.Error != "" || access.Address == "" {
		appErr := apperror.ErrWalletAccessDenied()
		s.setError(appErr.Message)
		return appErr
	}

	network := domain.NetworkPublic
	if net, err := s.provider.GetNetwork(ctx); err == nil && net.Error == "" && net.Network != "" {
		network = net.Network
	}

	s.mu.Lock()
	s.session.State = domain.WalletStateConnected
	s.session.PublicKey = access.Address
	s.session.Network = network
	s.session.Error = ""
	s.mu.Unlock()

	if err := s.sessions.Save(ctx, &domain.RememberedSession{
		PublicKey: access.Address,
		Network:   network,
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to remember wallet session")
	}

	s.log.Info().Str("public_key", access.Address).Str("network", string(network)).
		Msg("wallet connected")

	go s.refreshInBackground()
	return nil
}

// Disconnect resets the session to disconnected and forgets the remembered
// session. Stale balances are dropped with it.
func (s *WalletServiceImpl) Disconnect(ctx context.Context) {
	s.mu.Lock()
	installed := s.session.Installed
	s.session = domain.WalletSession{
		State:     domain.WalletStateDisconnected,
		Installed: installed,
	}
	s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear remembered wallet session")
	}
	s.log.Info().Msg("wallet disconnected")
}

// RefreshBalances replaces the session's balance list from the network.
// A no-op when disconnected. Fetch failures keep the previous balances and
// are not surfaced; the next timer tick retries.
func (s *WalletServiceImpl) RefreshBalances(ctx context.Context) error {
	s.mu.Lock()
	if !s.session.IsConnected() {
		s.mu.Unlock()
		return nil
	}
	s.session.BalancesLoading = true
	publicKey := s.session.PublicKey
	network := s.session.Network
	s.mu.Unlock()

	if network == "" {
		network = domain.NetworkPublic
	}
	balances, err := s.source.FetchBalances(ctx, publicKey, network)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.BalancesLoading = false
	if err != nil {
		s.log.Warn().Err(err).Str("public_key", publicKey).Msg("balance refresh failed")
		return nil
	}
	s.session.Balances = balances
	s.session.LastBalanceUpdate = domain.TimeToMillis(s.now())
	return nil
}

// AutoReconnect silently restores a remembered session when the extension
// still exposes the same address. Any mismatch or revocation clears the
// remembered session; transport failures leave everything untouched so a
// later attempt can succeed.
func (s *WalletServiceImpl) AutoReconnect(ctx context.Context) {
	remembered, err := s.sessions.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load remembered wallet session")
		return
	}
	if remembered == nil {
		return
	}

	s.mu.Lock()
	if s.session.State == domain.WalletStateConnected || s.session.State == domain.WalletStateConnecting {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if !s.CheckInstalled(ctx) {
		return
	}

	allowed, err := s.provider.IsAllowed(ctx)
	if err != nil {
		return
	}
	if allowed.Error != "" || !allowed.Allowed {
		// Authorization was revoked since last visit.
		s.Disconnect(ctx)
		return
	}

	addr, err := s.provider.GetAddress(ctx)
	if err != nil {
		return
	}
	if addr.Error != "" || addr.Address != remembered.PublicKey {
		// A different account is active now; do not silently adopt it.
		s.Disconnect(ctx)
		return
	}

	network := remembered.Network
	if net, err := s.provider.GetNetwork(ctx); err == nil && net.Error == "" && net.Network != "" {
		network = net.Network
	}

	s.mu.Lock()
	s.session.State = domain.WalletStateConnected
	s.session.PublicKey = remembered.PublicKey
	s.session.Network = network
	s.session.Error = ""
	s.mu.Unlock()

	s.log.Info().Str("public_key", remembered.PublicKey).Msg("wallet session restored")
	go s.refreshInBackground()
}

// Session returns a copy of the current session snapshot.
func (s *WalletServiceImpl) Session() domain.WalletSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.session
	if s.session.Balances != nil {
		snapshot.Balances = make([]domain.AssetBalance, len(s.session.Balances))
		copy(snapshot.Balances, s.session.Balances)
	}
	return snapshot
}

// SignTransaction signs an XDR envelope with the connected wallet. An empty
// passphrase defaults to the session network's.
func (s *WalletServiceImpl) SignTransaction(ctx context.Context, xdr string, networkPassphrase string) (ports.SignResult, error) {
	s.mu.Lock()
	connected := s.session.IsConnected()
	network := s.session.Network
	s.mu.Unlock()

	if !connected {
		return ports.SignResult{}, apperror.ErrWalletNotConnected()
	}
	if networkPassphrase == "" {
		networkPassphrase = network.Passphrase()
	}
	return s.provider.SignTransaction(ctx, xdr, networkPassphrase)
}

// StartBalanceRefresh registers an observer of the shared refresh timer,
// starting it on the first registration.
func (s *WalletServiceImpl) StartBalanceRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshRefs++
	if s.refreshStop != nil {
		return
	}
	stop := make(chan struct{})
	s.refreshStop = stop
	go s.refreshLoop(stop)
}

// StopBalanceRefresh drops one observer; the timer stops when the last one
// leaves.
func (s *WalletServiceImpl) StopBalanceRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshRefs > 0 {
		s.refreshRefs--
	}
	if s.refreshRefs == 0 && s.refreshStop != nil {
		close(s.refreshStop)
		s.refreshStop = nil
	}
}

func (s *WalletServiceImpl) refreshLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.refreshInBackground()
		}
	}
}

func (s *WalletServiceImpl) refreshInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	_ = s.RefreshBalances(ctx)
}

func (s *WalletServiceImpl) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.State = domain.WalletStateError
	s.session.Error = msg
	s.session.PublicKey = ""
	s.session.Network = ""
	s.session.Balances = nil
}
