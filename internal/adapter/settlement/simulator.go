// Package settlement provides a latency-injecting simulator for the
// settlement backend: trustline checks, stablecoin minting, on-chain
// payments, and confirmation polling. It is the stand-in behind the
// ports.Settlement seam until a real issuer/Horizon integration exists.
package settlement

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/core/domain"

	"github.com/rs/zerolog"
)

// Simulator implements ports.Settlement with artificial latency and
// probabilistic outcomes.
type Simulator struct {
	cfg config.SettlementConfig
	log zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand

	// sleep is swapped in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSimulator creates a Simulator seeded from the current time.
func NewSimulator(cfg config.SettlementConfig, log zerolog.Logger) *Simulator {
	return &Simulator{
		cfg:   cfg,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepCtx,
	}
}

// CheckTrustline reports whether the destination account holds a trustline
// for the asset. The simulation answers true ~80% of the time.
func (s *Simulator) CheckTrustline(ctx context.Context, address string, asset domain.CryptoAsset) (bool, error) {
	if err := s.sleep(ctx, s.cfg.TrustlineLatency); err != nil {
		return false, err
	}
	ok := s.roll(s.cfg.TrustlineRate)
	s.log.Debug().Str("address", address).Str("asset", string(asset)).Bool("trustline", ok).Msg("trustline checked")
	return ok, nil
}

// MintStablecoin issues stablecoin units and returns an opaque mint
// reference. Failure is injected at the configured rate (zero by default;
// a real issuer can and does fail here).
func (s *Simulator) MintStablecoin(ctx context.Context, amount float64, asset domain.CryptoAsset) (string, error) {
	if err := s.sleep(ctx, s.cfg.MintLatency); err != nil {
		return "", err
	}
	if s.cfg.MintFailureRate > 0 && !s.roll(1-s.cfg.MintFailureRate) {
		return "", fmt.Errorf("mint %v %s: issuer rejected", amount, asset)
	}
	ref := s.reference("mint")
	s.log.Debug().Float64("amount", amount).Str("asset", string(asset)).Str("ref", ref).Msg("stablecoin minted")
	return ref, nil
}

// SendPayment submits the on-chain transfer and returns an opaque
// transaction reference.
func (s *Simulator) SendPayment(ctx context.Context, destination string, amount float64, asset domain.CryptoAsset) (string, error) {
	if err := s.sleep(ctx, s.cfg.PaymentLatency); err != nil {
		return "", err
	}
	ref := s.reference("tx")
	s.log.Debug().Str("destination", destination).Float64("amount", amount).Str("ref", ref).Msg("payment submitted")
	return ref, nil
}

// CheckTransactionStatus polls the confirmation state of a submitted
// transaction: ~90% confirmed per check, otherwise still pending.
func (s *Simulator) CheckTransactionStatus(ctx context.Context, txRef string) (domain.TxStatus, error) {
	if err := s.sleep(ctx, s.cfg.StatusLatency); err != nil {
		return "", err
	}
	if s.roll(s.cfg.ConfirmRate) {
		return domain.TxStatusConfirmed, nil
	}
	return domain.TxStatusPending, nil
}

// roll returns true with probability p.
func (s *Simulator) roll(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// reference builds an opaque reference like tx_1712000000000_4fz09k1qa.
func (s *Simulator) reference(prefix string) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	s.mu.Lock()
	defer s.mu.Unlock()
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = alphabet[s.rng.Intn(len(alphabet))]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
