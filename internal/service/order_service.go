package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Demo order defaults, used when an unknown id is requested in demo mode.
// The synthesized order starts its lifecycle at request time so the
// progression timers run from a fresh clock.
const (
	demoAmount        = 50000.0
	demoFiat          = domain.FiatNGN
	demoAsset         = domain.AssetCNGN
	demoPayment       = domain.PaymentMethodBankTransfer
	demoWalletAddress = "GDEMO000000000000000000000000000000000000000000000000000"
)

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	orders ports.OrderRepository
	rates  map[string]float64
	window time.Duration
	demo   bool
	log    zerolog.Logger
	now    func() time.Time
}

// NewOrderService creates an OrderServiceImpl. rates maps fiat codes to
// units-per-crypto; window is the fiat payment window stamped into expiresAt.
func NewOrderService(
	orders ports.OrderRepository,
	rates map[string]float64,
	window time.Duration,
	demo bool,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orders: orders,
		rates:  rates,
		window: window,
		demo:   demo,
		log:    log,
		now:    time.Now,
	}
}

// Create validates the input, quotes fees and the crypto amount, and
// persists a new order in the created status.
func (s *OrderServiceImpl) Create(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	if in.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if strings.TrimSpace(in.WalletAddress) == "" {
		return nil, apperror.Validation("walletAddress is required")
	}
	rate, ok := s.rates[string(in.FiatCurrency)]
	if !ok || rate <= 0 {
		return nil, apperror.ErrUnsupportedCurrency(string(in.FiatCurrency))
	}

	id := in.ID
	if id == "" {
		id = "ord_" + uuid.New().String()
	}

	now := s.now()
	order := &domain.Order{
		ID:            id,
		CreatedAt:     domain.TimeToMillis(now),
		ExpiresAt:     domain.TimeToMillis(now.Add(s.window)),
		FiatCurrency:  in.FiatCurrency,
		CryptoAsset:   in.CryptoAsset,
		PaymentMethod: in.PaymentMethod,
		Amount:        in.Amount,
		ExchangeRate:  rate,
		CryptoAmount:  domain.ConvertToCrypto(in.Amount, rate),
		Fees:          domain.QuoteFees(in.Amount, in.PaymentMethod),
		WalletAddress: in.WalletAddress,
		Status:        domain.OrderStatusCreated,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("fiat", string(order.FiatCurrency)).
		Float64("amount", order.Amount).
		Float64("crypto_amount", order.CryptoAmount).
		Msg("order created")

	return order, nil
}

// Get fetches an order by id.
func (s *OrderServiceImpl) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}

// GetOrCreate fetches an order, synthesizing a default one for a missing id
// when demo mode is on. Outside demo mode a miss surfaces as not found.
func (s *OrderServiceImpl) GetOrCreate(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err == nil {
		return order, nil
	}

	var appErr *apperror.AppError
	if !s.demo || !errors.As(err, &appErr) || appErr.Code != "ORD_001" {
		return nil, err
	}

	s.log.Debug().Str("order_id", id).Msg("synthesizing demo order for unknown id")
	created, createErr := s.Create(ctx, ports.CreateOrderInput{
		ID:            id,
		Amount:        demoAmount,
		FiatCurrency:  demoFiat,
		CryptoAsset:   demoAsset,
		PaymentMethod: demoPayment,
		WalletAddress: demoWalletAddress,
	})
	if createErr != nil {
		// Lost a create race: someone else synthesized it first.
		if errors.As(createErr, &appErr) && appErr.Code == "ORD_003" {
			return s.orders.Get(ctx, id)
		}
		return nil, createErr
	}
	return created, nil
}
