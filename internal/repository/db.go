package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration. The three listing
// tables are deliberately independent collections, one per tier.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS sellers (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL UNIQUE,
			password     TEXT NOT NULL,
			display_name TEXT NOT NULL,
			verified     BOOLEAN NOT NULL DEFAULT FALSE,
			role         TEXT NOT NULL DEFAULT 'seller',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sellers_email ON sellers(email);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id              TEXT PRIMARY KEY,
			seller_id       TEXT NOT NULL,
			tier            TEXT NOT NULL,
			status          TEXT NOT NULL DEFAULT 'active',
			activated_at    TIMESTAMPTZ NOT NULL,
			expires_at      TIMESTAMPTZ NOT NULL,
			transaction_ref TEXT NOT NULL UNIQUE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_seller_id ON subscriptions(seller_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_one_active
			ON subscriptions(seller_id, tier) WHERE status = 'active';

		CREATE TABLE IF NOT EXISTS subscription_activations (
			transaction_ref TEXT PRIMARY KEY,
			seller_id       TEXT NOT NULL,
			tier            TEXT NOT NULL,
			applied_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS payment_transactions (
			transaction_ref TEXT PRIMARY KEY,
			seller_id       TEXT NOT NULL,
			tier            TEXT NOT NULL,
			amount_minor    BIGINT NOT NULL,
			currency        TEXT NOT NULL,
			gateway_status  TEXT NOT NULL DEFAULT 'pending',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finalized_at    TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_payment_transactions_seller_id ON payment_transactions(seller_id);

		CREATE TABLE IF NOT EXISTS starter_listings (
			id          TEXT PRIMARY KEY,
			seller_id   TEXT NOT NULL,
			title       TEXT NOT NULL,
			price_minor BIGINT NOT NULL,
			sold_out    BOOLEAN NOT NULL DEFAULT FALSE,
			urgent      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_starter_listings_seller_id ON starter_listings(seller_id);

		CREATE TABLE IF NOT EXISTS standard_listings (
			id          TEXT PRIMARY KEY,
			seller_id   TEXT NOT NULL,
			title       TEXT NOT NULL,
			price_minor BIGINT NOT NULL,
			sold_out    BOOLEAN NOT NULL DEFAULT FALSE,
			urgent      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_standard_listings_seller_id ON standard_listings(seller_id);

		CREATE TABLE IF NOT EXISTS premium_listings (
			id            TEXT PRIMARY KEY,
			seller_id     TEXT NOT NULL,
			business_name TEXT NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_premium_listings_seller_id ON premium_listings(seller_id);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
