// Package sqlite implements the import collaborators on a local SQLite file.
// It backs the command line tool, where running a PostgreSQL server for a
// personal ledger would be overkill.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure Go driver

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS import_configurations (
    signature  TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    mapping    TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    date        TEXT NOT NULL,
    description TEXT NOT NULL,
    amount      TEXT NOT NULL,
    direction   TEXT NOT NULL,
    category    TEXT NOT NULL,
    tags        TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_dedup ON transactions (description, date, direction);

CREATE TABLE IF NOT EXISTS categories (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_runs (
    id          TEXT PRIMARY KEY,
    config_name TEXT NOT NULL,
    signature   TEXT NOT NULL,
    file_name   TEXT NOT NULL,
    added       INTEGER NOT NULL,
    skipped     INTEGER NOT NULL,
    dropped     INTEGER NOT NULL,
    created_at  TEXT NOT NULL
);
`

// fixed-width UTC timestamps sort correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements core.MappingStore, core.TransactionStore,
// core.CategorySource and core.RunRecorder.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY mid-commit
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Find returns the configuration saved for signature, or nil.
func (s *Store) Find(ctx context.Context, signature string) (*core.ImportConfiguration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, signature, mapping, updated_at FROM import_configurations WHERE signature = ?`, signature)

	cfg, err := scanConfiguration(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_configurations (signature, name, mapping, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (signature) DO UPDATE
		SET name = excluded.name, mapping = excluded.mapping, updated_at = excluded.updated_at`,
		signature, name, string(mappingJSON), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	return nil
}

// List returns every configuration ordered by name.
func (s *Store) List(ctx context.Context) ([]core.ImportConfiguration, error) {
	rows, err := s.db.QueryContext(ctx,
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_configurations WHERE signature = ?`, signature)
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("configuration %q: %w", signature, store.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConfiguration(row scanner) (*core.ImportConfiguration, error) {
	var (
		cfg         core.ImportConfiguration
		mappingJSON string
		updatedAt   string
	)
	if err := row.Scan(&cfg.Name, &cfg.HeaderSignature, &mappingJSON, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(mappingJSON), &cfg.Mapping); err != nil {
		return nil, fmt.Errorf("unmarshal mapping for %q: %w", cfg.Name, err)
	}
	cfg.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &cfg, nil
}

// BulkCreate inserts candidates row by row, skipping duplicates.
func (s *Store) BulkCreate(ctx context.Context, candidates []core.Candidate, policy core.DedupPolicy) (core.CommitResult, error) {
	return core.CommitRows(ctx, rowWriter{db: s.db}, candidates, policy)
}

type rowWriter struct {
	db *sql.DB
}

func (w rowWriter) Exists(ctx context.Context, key core.DedupKey) (bool, error) {
	query := `SELECT amount FROM transactions WHERE description = ? AND date = ? AND direction = ?`
	rows, err := w.db.QueryContext(ctx, query, key.Description, key.Date.String(), string(key.Direction))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		if !key.MatchAmount {
			return true, nil
		}
		var stored string
		if err := rows.Scan(&stored); err != nil {
			return false, err
		}
		// amounts are text, so compare numerically rather than in SQL
		if d, err := decimal.NewFromString(stored); err == nil && d.Equal(key.Amount) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (w rowWriter) Insert(ctx context.Context, c core.Candidate) error {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	_, err = w.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, description, amount, direction, category, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), c.Date.String(), c.Description, c.Amount.String(), string(c.Direction),
		c.Category, string(tagsJSON), time.Now().UTC().Format(timeLayout))
	return err
}

// Transactions returns stored transactions in date order. It is used by the
// command line tool to print what an import wrote.
func (s *Store) Transactions(ctx context.Context) ([]core.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, description, amount, direction, category, tags FROM transactions ORDER BY date, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Candidate
	for rows.Next() {
		var (
			c                 core.Candidate
			date, amount, dir string
			tagsJSON          string
		)
		if err := rows.Scan(&date, &c.Description, &amount, &dir, &c.Category, &tagsJSON); err != nil {
			return nil, err
		}
		if c.Date, err = core.ParseISODate(date); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		c.Direction = core.Direction(dir)
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return nil, fmt.Errorf("stored tags: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCategories replaces the canonical category list.
func (s *Store) SetCategories(ctx context.Context, cats []core.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return err
	}
	for _, c := range cats {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
			return fmt.Errorf("insert category %q: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Categories returns the canonical category list.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordRun stores an import run.
func (s *Store) RecordRun(ctx context.Context, run core.ImportRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, config_name, signature, file_name, added, skipped, dropped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ConfigName, run.Signature, run.FileName, run.Added, run.Skipped, run.Dropped,
		run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.ImportRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_name, signature, file_name, added, skipped, dropped, created_at
		FROM import_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	var out []core.ImportRun
	for rows.Next() {
		var (
			run       core.ImportRun
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.ConfigName, &run.Signature, &run.FileName,
			&run.Added, &run.Skipped, &run.Dropped, &createdAt); err != nil {
			return nil, err
		}
		run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, run)
	}
	return out, rows.Err()
}
