package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// OrderArchiveRepo implements ports.OrderArchive. Terminal orders are
// copied here from the live Redis record for durable reporting.
type OrderArchiveRepo struct {
	pool Pool
}

// NewOrderArchiveRepo creates a new OrderArchiveRepo.
func NewOrderArchiveRepo(pool Pool) *OrderArchiveRepo {
	return &OrderArchiveRepo{pool: pool}
}

// Insert archives a terminal order. Re-archiving the same order id is a
// no-op rather than an error, so best-effort retries stay safe.
func (r *OrderArchiveRepo) Insert(ctx context.Context, o *domain.Order) error {
	if !o.IsTerminal() {
		return apperror.ErrInvalidTransition(string(o.Status), "archived")
	}

	query := `INSERT INTO order_archive (id, created_at, expires_at, fiat_currency, crypto_asset,
		payment_method, amount, exchange_rate, crypto_amount, processing_fee, network_fee,
		total_fees, total_cost, wallet_address, status, transaction_hash, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.CreatedAt, o.ExpiresAt, o.FiatCurrency, o.CryptoAsset,
		o.PaymentMethod, o.Amount, o.ExchangeRate, o.CryptoAmount,
		o.Fees.ProcessingFee, o.Fees.NetworkFee, o.Fees.TotalFees, o.Fees.TotalCost,
		o.WalletAddress, o.Status, nullableStr(o.TransactionHash), o.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert archived order: %w", err)
	}
	return nil
}

// GetByID fetches an archived order.
func (r *OrderArchiveRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT id, created_at, expires_at, fiat_currency, crypto_asset, payment_method,
		amount, exchange_rate, crypto_amount, processing_fee, network_fee, total_fees, total_cost,
		wallet_address, status, transaction_hash, completed_at
		FROM order_archive WHERE id = $1`

	o := &domain.Order{}
	var txHash *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CreatedAt, &o.ExpiresAt, &o.FiatCurrency, &o.CryptoAsset, &o.PaymentMethod,
		&o.Amount, &o.ExchangeRate, &o.CryptoAmount,
		&o.Fees.ProcessingFee, &o.Fees.NetworkFee, &o.Fees.TotalFees, &o.Fees.TotalCost,
		&o.WalletAddress, &o.Status, &txHash, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan archived order: %w", err)
	}
	if txHash != nil {
		o.TransactionHash = *txHash
	}
	return o, nil
}

// Stats aggregates the archived order population.
func (r *OrderArchiveRepo) Stats(ctx context.Context) (*ports.ArchiveStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0) AS fiat_volume,
		COALESCE(SUM(crypto_amount) FILTER (WHERE status = 'completed'), 0) AS crypto_delivered
		FROM order_archive`

	stats := &ports.ArchiveStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total, &stats.Completed, &stats.Failed,
		&stats.FiatVolume, &stats.CryptoDelivered,
	)
	if err != nil {
		return nil, fmt.Errorf("get archive stats: %w", err)
	}
	return stats, nil
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
