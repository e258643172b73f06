package postgres

import (
	"context"
	"fmt"

	"github.com/gabito1451/Aframp/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Pool is the subset of pgxpool.Pool the repositories use. pgxmock
// implements it for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool creates a PostgreSQL connection pool using pgx.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

// Migrate creates the archive schema if it does not exist yet.
func Migrate(ctx context.Context, pool Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS order_archive (
		id TEXT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		expires_at BIGINT NOT NULL,
		fiat_currency TEXT NOT NULL,
		crypto_asset TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		exchange_rate DOUBLE PRECISION NOT NULL,
		crypto_amount DOUBLE PRECISION NOT NULL,
		processing_fee DOUBLE PRECISION NOT NULL,
		network_fee DOUBLE PRECISION NOT NULL,
		total_fees DOUBLE PRECISION NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		wallet_address TEXT NOT NULL,
		status TEXT NOT NULL,
		transaction_hash TEXT,
		completed_at BIGINT,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create order_archive table: %w", err)
	}
	return nil
}
