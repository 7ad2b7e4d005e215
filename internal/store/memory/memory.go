// Package memory is an in-process store for tests and local runs without a
// database. Data lives as long as the Store value.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/store"
)

// Store implements every core collaborator interface in memory.
type Store struct {
	mu         sync.RWMutex
	configs    map[string]core.ImportConfiguration
	txns       []core.Candidate
	categories []core.Category
	runs       []core.ImportRun
}

// New returns an empty store offering categories as the canonical list.
func New(categories ...core.Category) *Store {
	return &Store{
		configs:    make(map[string]core.ImportConfiguration),
		categories: categories,
	}
}

// Find returns the configuration for signature or nil.
func (s *Store) Find(_ context.Context, signature string) (*core.ImportConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[signature]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

// Save upserts the configuration for signature.
func (s *Store) Save(_ context.Context, name, signature string, mapping core.ColumnMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[signature] = core.ImportConfiguration{
		Name:            name,
		HeaderSignature: signature,
		Mapping:         mapping,
		UpdatedAt:       time.Now().UTC(),
	}
	return nil
}

// List returns all configurations ordered by name.
func (s *Store) List(context.Context) ([]core.ImportConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ImportConfiguration, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].HeaderSignature < out[j].HeaderSignature
	})
	return out, nil
}

// Delete removes the configuration for signature.
func (s *Store) Delete(_ context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[signature]; !ok {
		return fmt.Errorf("configuration %q: %w", signature, store.ErrNotFound)
	}
	delete(s.configs, signature)
	return nil
}

// BulkCreate stores candidates row by row, skipping duplicates.
func (s *Store) BulkCreate(ctx context.Context, candidates []core.Candidate, policy core.DedupPolicy) (core.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CommitRows(ctx, (*rowWriter)(s), candidates, policy)
}

// Transactions returns a copy of the stored transactions.
func (s *Store) Transactions() []core.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Candidate(nil), s.txns...)
}

// Categories returns the canonical category list.
func (s *Store) Categories(context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...), nil
}

// RecordRun appends an import run.
func (s *Store) RecordRun(_ context.Context, run core.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// ListRuns returns runs newest first, at most limit when limit > 0.
func (s *Store) ListRuns(_ context.Context, limit int) ([]core.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ImportRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		out = append(out, s.runs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// rowWriter runs under the store's write lock.
type rowWriter Store

func (w *rowWriter) Exists(_ context.Context, key core.DedupKey) (bool, error) {
	for _, t := range w.txns {
		if key.Matches(t) {
			return true, nil
		}
	}
	return false, nil
}

func (w *rowWriter) Insert(_ context.Context, c core.Candidate) error {
	w.txns = append(w.txns, c)
	return nil
}
