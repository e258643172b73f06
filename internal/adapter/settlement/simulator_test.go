package settlement

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(cfg config.SettlementConfig) (*Simulator, *[]time.Duration) {
	sim := NewSimulator(cfg, zerolog.Nop())
	var slept []time.Duration
	sim.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return sim, &slept
}

func TestSimulator_CheckTrustline(t *testing.T) {
	t.Run("always holds at rate 1", func(t *testing.T) {
		sim, slept := newTestSimulator(config.SettlementConfig{
			TrustlineLatency: time.Second,
			TrustlineRate:    1.0,
		})
		ok, err := sim.CheckTrustline(context.Background(), "GABC", domain.AssetCNGN)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []time.Duration{time.Second}, *slept)
	})

	t.Run("never holds at rate 0", func(t *testing.T) {
		sim, _ := newTestSimulator(config.SettlementConfig{TrustlineRate: 0})
		ok, err := sim.CheckTrustline(context.Background(), "GABC", domain.AssetCNGN)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSimulator_MintStablecoin(t *testing.T) {
	t.Run("returns a mint reference", func(t *testing.T) {
		sim, slept := newTestSimulator(config.SettlementConfig{MintLatency: 2 * time.Second})
		ref, err := sim.MintStablecoin(context.Background(), 31.25, domain.AssetCNGN)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "mint_"))
		assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
	})

	t.Run("fails at failure rate 1", func(t *testing.T) {
		sim, _ := newTestSimulator(config.SettlementConfig{MintFailureRate: 1.0})
		_, err := sim.MintStablecoin(context.Background(), 31.25, domain.AssetCNGN)
		require.Error(t, err)
	})
}

func TestSimulator_SendPayment(t *testing.T) {
	sim, _ := newTestSimulator(config.SettlementConfig{PaymentLatency: time.Second})
	ref, err := sim.SendPayment(context.Background(), "GABC", 31.25, domain.AssetCNGN)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "tx_"))
}

func TestSimulator_CheckTransactionStatus(t *testing.T) {
	t.Run("confirms at rate 1", func(t *testing.T) {
		sim, _ := newTestSimulator(config.SettlementConfig{ConfirmRate: 1.0})
		status, err := sim.CheckTransactionStatus(context.Background(), "tx_abc")
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusConfirmed, status)
	})

	t.Run("pending at rate 0", func(t *testing.T) {
		sim, _ := newTestSimulator(config.SettlementConfig{ConfirmRate: 0})
		status, err := sim.CheckTransactionStatus(context.Background(), "tx_abc")
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusPending, status)
	})
}

func TestSimulator_CancelledContextAbortsLatency(t *testing.T) {
	sim := NewSimulator(config.SettlementConfig{TrustlineLatency: time.Minute}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.CheckTrustline(ctx, "GABC", domain.AssetCNGN)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_ReferencesAreUnique(t *testing.T) {
	sim, _ := newTestSimulator(config.SettlementConfig{})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := sim.SendPayment(context.Background(), "GABC", 1, domain.AssetCNGN)
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
