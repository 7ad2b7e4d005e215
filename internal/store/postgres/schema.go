package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables used by the import pipeline.
const Schema = `
CREATE TABLE IF NOT EXISTS import_configurations (
    signature  TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    mapping    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
    id          UUID PRIMARY KEY,
    date        DATE NOT NULL,
    description TEXT NOT NULL,
    amount      NUMERIC(18, 4) NOT NULL CHECK (amount >= 0),
    direction   TEXT NOT NULL CHECK (direction IN ('expense', 'income')),
    category    TEXT NOT NULL,
    tags        TEXT[] NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_dedup
    ON transactions (description, date, direction);

CREATE TABLE IF NOT EXISTS categories (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_runs (
    id          UUID PRIMARY KEY,
    config_name TEXT NOT NULL,
    signature   TEXT NOT NULL,
    file_name   TEXT NOT NULL,
    added       INTEGER NOT NULL,
    skipped     INTEGER NOT NULL,
    dropped     INTEGER NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_import_runs_created ON import_runs (created_at DESC);
`

// Migrate applies Schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
