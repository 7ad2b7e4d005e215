// Package postgres implements the import collaborators on PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/store"
)

// Store implements core.MappingStore, core.TransactionStore,
// core.CategorySource and core.RunRecorder.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps a pool. Call Migrate once before first use.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ----------------------------------------------------------------------------
// Import configurations
// ----------------------------------------------------------------------------

// Find returns the configuration saved for signature, or nil.
func (s *Store) Find(ctx context.Context, signature string) (*core.ImportConfiguration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT name, signature, mapping, updated_at FROM import_configurations WHERE signature = $1`,
		signature)

	cfg, err := scanConfiguration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find configuration: %w", err)
	}
	return cfg, nil
}

// Save upserts the configuration for signature.
func (s *Store) Save(ctx context.Context, name, signature string, mapping core.ColumnMapping) error {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_configurations (signature, name, mapping, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (signature) DO UPDATE
		SET name = EXCLUDED.name, mapping = EXCLUDED.mapping, updated_at = now()`,
		signature, name, mappingJSON)
	if err != nil {
		return fmt.Errorf("save configuration: %w", describe(err))
	}
	return nil
}

// List returns every configuration ordered by name.
func (s *Store) List(ctx context.Context) ([]core.ImportConfiguration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, signature, mapping, updated_at FROM import_configurations ORDER BY name, signature`)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	defer rows.Close()

	out := make([]core.ImportConfiguration, 0)
	for rows.Next() {
		cfg, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	return out, rows.Err()
}

// Delete removes the configuration for signature.
func (s *Store) Delete(ctx context.Context, signature string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM import_configurations WHERE signature = $1`, signature)
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("configuration %q: %w", signature, store.ErrNotFound)
	}
	return nil
}

func scanConfiguration(row pgx.Row) (*core.ImportConfiguration, error) {
	var (
		cfg         core.ImportConfiguration
		mappingJSON []byte
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&cfg.Name, &cfg.HeaderSignature, &mappingJSON, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(mappingJSON, &cfg.Mapping); err != nil {
		return nil, fmt.Errorf("unmarshal mapping for %q: %w", cfg.Name, err)
	}
	if updatedAt.Valid {
		cfg.UpdatedAt = updatedAt.Time
	}
	return &cfg, nil
}

// ----------------------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------------------

// BulkCreate inserts candidates one by one without a surrounding
// transaction, so rows before a failure stay committed.
func (s *Store) BulkCreate(ctx context.Context, candidates []core.Candidate, policy core.DedupPolicy) (core.CommitResult, error) {
	return core.CommitRows(ctx, rowWriter{pool: s.pool}, candidates, policy)
}

type rowWriter struct {
	pool *pgxpool.Pool
}

func (w rowWriter) Exists(ctx context.Context, key core.DedupKey) (bool, error) {
	var exists bool
	err := w.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE description = $1 AND date = $2 AND direction = $3
			  AND (NOT $4::boolean OR amount = $5::numeric)
		)`,
		key.Description, pgDate(key.Date), string(key.Direction), key.MatchAmount, key.Amount.String(),
	).Scan(&exists)
	if err != nil {
		return false, describe(err)
	}
	return exists, nil
}

func (w rowWriter) Insert(ctx context.Context, c core.Candidate) error {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := w.pool.Exec(ctx, `
		INSERT INTO transactions (id, date, description, amount, direction, category, tags)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)`,
		uuid.New(), pgDate(c.Date), c.Description, c.Amount.String(), string(c.Direction), c.Category, tags,
	)
	return describe(err)
}

func pgDate(d core.Date) pgtype.Date {
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// describe adds the server's detail to a PostgreSQL error.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s)", err, pgErr.Detail)
	}
	return err
}

// ----------------------------------------------------------------------------
// Categories and history
// ----------------------------------------------------------------------------

// Categories returns the canonical category list.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Category, error) {
		var c core.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// RecordRun stores an import run.
func (s *Store) RecordRun(ctx context.Context, run core.ImportRun) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_runs (id, config_name, signature, file_name, added, skipped, dropped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, run.ConfigName, run.Signature, run.FileName, run.Added, run.Skipped, run.Dropped, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record import run: %w", describe(err))
	}
	return nil
}

// ListRuns returns the newest runs first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.ImportRun, error) {
	query := `SELECT id, config_name, signature, file_name, added, skipped, dropped, created_at
		FROM import_runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ImportRun, error) {
		var (
			run core.ImportRun
			id  uuid.UUID
		)
		err := row.Scan(&id, &run.ConfigName, &run.Signature, &run.FileName,
			&run.Added, &run.Skipped, &run.Dropped, &run.CreatedAt)
		run.ID = id.String()
		return run, err
	})
}
