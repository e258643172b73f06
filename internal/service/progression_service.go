package service

import (
	"context"
	"sync"
	"time"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"

	"github.com/rs/zerolog"
)

// orderFlight is the per-order progression bookkeeping: whether a tick is
// currently running, and which statuses have already had their side effects
// fired. Statuses are marked before the side effect runs, so a retried tick
// after a crash-free error never double-mints or double-pays.
type orderFlight struct {
	busy      bool
	processed map[domain.OrderStatus]bool
}

// ProgressionService drives orders through the lifecycle on a simulated
// settlement clock: transitions unlock as the order ages past configured
// delays, and each unlocked transition runs its settlement side effects
// exactly once. Implements ports.ProgressionService.
type ProgressionService struct {
	orders   ports.OrderRepository
	settle   ports.Settlement
	archive  ports.OrderArchive
	notifier ports.Notifier
	pub      ports.StatusPublisher
	cfg      config.ProgressionConfig
	log      zerolog.Logger

	mu      sync.Mutex
	flights map[string]*orderFlight

	// Injectable clocks for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProgressionService creates a ProgressionService. archive, notifier and
// pub may be nil; the corresponding terminal-order hooks are then skipped.
func NewProgressionService(
	orders ports.OrderRepository,
	settle ports.Settlement,
	archive ports.OrderArchive,
	notifier ports.Notifier,
	pub ports.StatusPublisher,
	cfg config.ProgressionConfig,
	log zerolog.Logger,
) *ProgressionService {
	return &ProgressionService{
		orders:   orders,
		settle:   settle,
		archive:  archive,
		notifier: notifier,
		pub:      pub,
		cfg:      cfg,
		log:      log,
		flights:  make(map[string]*orderFlight),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Tick advances one order a single step if a transition is due. Overlapping
// ticks for the same order collapse: the second caller gets (nil, nil) and
// the in-flight tick's result stands. Settlement failures do not come back
// as errors; they move the order to failed.
func (s *ProgressionService) Tick(ctx context.Context, orderID string) (*domain.Order, error) {
	if !s.acquire(orderID) {
		return nil, nil
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		s.release(orderID, false)
		return nil, err
	}

	if order.IsTerminal() {
		s.release(orderID, true)
		return order, nil
	}

	err = s.advance(ctx, order)
	s.release(orderID, order.IsTerminal())
	if err != nil {
		return nil, err
	}
	return order, nil
}

// advance applies at most one due transition to the order in place.
func (s *ProgressionService) advance(ctx context.Context, order *domain.Order) error {
	age := order.Age(s.now())

	switch order.Status {
	case domain.OrderStatusCreated, domain.OrderStatusAwaitingPayment:
		if age > s.cfg.PaymentDelay {
			return s.confirmPayment(ctx, order)
		}
	case domain.OrderStatusPaymentReceived:
		if age > s.cfg.MintDelay {
			return s.mint(ctx, order)
		}
	case domain.OrderStatusMinting:
		// A crash between setting minting and recording the mint leaves the
		// order parked here; rerun the mint path (the processed set decides
		// whether the side effect fires again).
		return s.mint(ctx, order)
	case domain.OrderStatusTransferring:
		if age > s.cfg.TransferDelay {
			return s.transfer(ctx, order)
		}
	default:
		s.log.Error().Str("order_id", order.ID).Str("status", string(order.Status)).
			Msg("order in unknown status, failing")
		return s.fail(ctx, order, "unrecognized order status")
	}
	return nil
}

// confirmPayment acknowledges the fiat leg once the payment delay elapsed.
func (s *ProgressionService) confirmPayment(ctx context.Context, order *domain.Order) error {
	if !s.markProcessed(order.ID, domain.OrderStatusPaymentReceived) {
		return nil
	}
	return s.transition(ctx, order, domain.OrderStatusPaymentReceived, nil)
}

// mint runs the minting leg: mark the order minting, verify the trustline
// (advisory only), then mint. A mint failure fails the order.
func (s *ProgressionService) mint(ctx context.Context, order *domain.Order) error {
	if !s.markProcessed(order.ID, domain.OrderStatusMinting) {
		return nil
	}

	if order.Status != domain.OrderStatusMinting {
		if err := s.transition(ctx, order, domain.OrderStatusMinting, nil); err != nil {
			return err
		}
	}

	ok, err := s.settle.CheckTrustline(ctx, order.WalletAddress, order.CryptoAsset)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", order.ID).Msg("trustline check failed")
	} else if !ok {
		// Advisory: delivery may bounce, but minting proceeds regardless.
		s.log.Warn().Str("order_id", order.ID).Str("asset", string(order.CryptoAsset)).
			Msg("destination has no trustline for asset")
	}

	mintRef, err := s.settle.MintStablecoin(ctx, order.CryptoAmount, order.CryptoAsset)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("mint failed")
		return s.fail(ctx, order, "minting failed")
	}

	return s.transition(ctx, order, domain.OrderStatusTransferring, func(o *domain.Order) {
		o.TransactionHash = mintRef
	})
}

// transfer runs the delivery leg: submit the payment, then poll for
// confirmation. Exhausting the allowed attempts fails the order.
func (s *ProgressionService) transfer(ctx context.Context, order *domain.Order) error {
	if !s.markProcessed(order.ID, domain.OrderStatusCompleted) {
		return nil
	}

	txHash, err := s.settle.SendPayment(ctx, order.WalletAddress, order.CryptoAmount, order.CryptoAsset)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("payment submission failed")
		return s.fail(ctx, order, "transfer failed")
	}

	for attempt := 1; attempt <= s.cfg.ConfirmAttempts; attempt++ {
		status, err := s.settle.CheckTransactionStatus(ctx, txHash)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", order.ID).Int("attempt", attempt).
				Msg("confirmation check failed")
		} else {
			switch status {
			case domain.TxStatusConfirmed:
				return s.transition(ctx, order, domain.OrderStatusCompleted, func(o *domain.Order) {
					o.TransactionHash = txHash
					completed := domain.TimeToMillis(s.now())
					o.CompletedAt = &completed
				})
			case domain.TxStatusFailed:
				s.log.Error().Str("order_id", order.ID).Str("tx", txHash).Msg("transaction failed on-chain")
				return s.fail(ctx, order, "transaction failed")
			}
		}
		if attempt < s.cfg.ConfirmAttempts {
			if err := s.sleep(ctx, s.cfg.ConfirmInterval); err != nil {
				return err
			}
		}
	}

	s.log.Error().Str("order_id", order.ID).Str("tx", txHash).
		Int("attempts", s.cfg.ConfirmAttempts).Msg("confirmation timed out")
	return s.fail(ctx, order, "confirmation timed out")
}

// transition moves the order to the next status, persists it, and publishes
// the change. Terminal statuses additionally archive and notify.
func (s *ProgressionService) transition(ctx context.Context, order *domain.Order, next domain.OrderStatus, mutate func(*domain.Order)) error {
	if !order.Status.CanTransitionTo(next) {
		return apperror.ErrInvalidTransition(string(order.Status), string(next))
	}

	prev := order.Status
	order.Status = next
	if mutate != nil {
		mutate(order)
	}

	if err := s.orders.Update(ctx, order); err != nil {
		order.Status = prev
		return err
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("order status advanced")

	if s.pub != nil {
		s.pub.Publish(*order)
	}
	if order.IsTerminal() {
		s.onTerminal(ctx, order)
	}
	return nil
}

// fail moves the order to failed, recording why in the log only; the order
// record itself carries no failure reason field.
func (s *ProgressionService) fail(ctx context.Context, order *domain.Order, reason string) error {
	s.log.Warn().Str("order_id", order.ID).Str("reason", reason).Msg("failing order")
	return s.transition(ctx, order, domain.OrderStatusFailed, nil)
}

// onTerminal archives the order and, on success, notifies the user. Both are
// best-effort; the status change already committed.
func (s *ProgressionService) onTerminal(ctx context.Context, order *domain.Order) {
	if s.archive != nil {
		if err := s.archive.Insert(ctx, order); err != nil {
			s.log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to archive terminal order")
		}
	}
	if s.notifier != nil && order.Status == domain.OrderStatusCompleted {
		s.notifier.OrderCompleted(ctx, order)
	}
}

// acquire takes the single-flight slot for an order. Returns false if a tick
// is already running.
func (s *ProgressionService) acquire(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flights[orderID]
	if f == nil {
		f = &orderFlight{processed: make(map[domain.OrderStatus]bool)}
		s.flights[orderID] = f
	}
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

// release frees the single-flight slot; terminal orders drop their
// bookkeeping entirely.
func (s *ProgressionService) release(orderID string, terminal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if terminal {
		delete(s.flights, orderID)
		return
	}
	if f := s.flights[orderID]; f != nil {
		f.busy = false
	}
}

// markProcessed records that the side effects gating entry into status have
// fired for this order. Returns false if they already had.
func (s *ProgressionService) markProcessed(orderID string, status domain.OrderStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flights[orderID]
	if f == nil {
		f = &orderFlight{processed: make(map[domain.OrderStatus]bool)}
		s.flights[orderID] = f
	}
	if f.processed[status] {
		return false
	}
	f.processed[status] = true
	return true
}
