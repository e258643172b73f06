package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"

	"github.com/rs/zerolog"
)

// tickTimeout bounds a single progression tick, including the settlement
// confirmation poll it may run.
const tickTimeout = 30 * time.Second

// PollerManager implements ports.OrderTracker: one goroutine per tracked
// order, ticking the progression engine on a fixed interval plus one
// immediate tick on registration. Pollers stop themselves once their order
// reaches a terminal status or disappears.
type PollerManager struct {
	engine   ports.ProgressionService
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	closed  bool
	pollers map[string]chan struct{}
	wg      sync.WaitGroup
}

// NewPollerManager creates a PollerManager.
func NewPollerManager(engine ports.ProgressionService, interval time.Duration, log zerolog.Logger) *PollerManager {
	return &PollerManager{
		engine:   engine,
		interval: interval,
		log:      log,
		pollers:  make(map[string]chan struct{}),
	}
}

// Track starts polling an order. Tracking an already-tracked order is a
// no-op; the existing poller keeps its schedule.
func (m *PollerManager) Track(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if _, ok := m.pollers[orderID]; ok {
		return
	}
	stop := make(chan struct{})
	m.pollers[orderID] = stop
	m.wg.Add(1)
	go m.run(orderID, stop)
}

// Untrack stops polling an order. The order record itself is untouched.
func (m *PollerManager) Untrack(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stop, ok := m.pollers[orderID]; ok {
		delete(m.pollers, orderID)
		close(stop)
	}
}

// Close stops all pollers and waits for them to drain.
func (m *PollerManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for id, stop := range m.pollers {
		delete(m.pollers, id)
		close(stop)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *PollerManager) run(orderID string, stop chan struct{}) {
	defer m.wg.Done()

	if m.tick(orderID) {
		m.forget(orderID, stop)
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if m.tick(orderID) {
				m.forget(orderID, stop)
				return
			}
		}
	}
}

// tick runs one progression step. Returns true when polling should stop:
// the order is terminal or no longer exists.
func (m *PollerManager) tick(orderID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	order, err := m.engine.Tick(ctx, orderID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "ORD_001" {
			m.log.Warn().Str("order_id", orderID).Msg("tracked order vanished, stopping poller")
			return true
		}
		m.log.Warn().Err(err).Str("order_id", orderID).Msg("progression tick failed")
		return false
	}
	if order != nil && order.IsTerminal() {
		m.log.Info().Str("order_id", orderID).Str("status", string(order.Status)).
			Msg("order reached terminal status, stopping poller")
		return true
	}
	return false
}

// forget removes a poller's own registration after it decided to stop. If
// Untrack already removed it (and closed a different lifecycle), this is a
// no-op.
func (m *PollerManager) forget(orderID string, stop chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.pollers[orderID]; ok && current == stop {
		delete(m.pollers, orderID)
	}
}
