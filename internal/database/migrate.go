package database

import (
	"context"
	"database/sql"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id             SERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		price          NUMERIC(12,2) NOT NULL,
		stock_quantity INT NOT NULL DEFAULT 0,
		available      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS order_payments (
		id             UUID PRIMARY KEY,
		username       TEXT NOT NULL,
		provider       TEXT NOT NULL,
		order_id       TEXT NOT NULL UNIQUE,
		payment_id     TEXT NOT NULL DEFAULT '',
		amount         NUMERIC(12,2) NOT NULL,
		currency       TEXT NOT NULL,
		status         TEXT NOT NULL,
		fulfilled      BOOLEAN NOT NULL DEFAULT FALSE,
		checkout_items TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_payments_username
		ON order_payments (username, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_order_payments_unfulfilled
		ON order_payments (updated_at) WHERE status = 'PAID' AND fulfilled = FALSE`,
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so running it on every boot is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
