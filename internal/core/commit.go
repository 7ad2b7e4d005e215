package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ContextCheckInterval is how often long row loops check for cancellation.
var ContextCheckInterval = 100

// DedupPolicy decides which fields make two transactions the same.
// The zero value matches on description, date and direction.
type DedupPolicy struct {
	// MatchAmount also requires equal amounts, so two purchases at the same
	// shop on the same day are both kept.
	MatchAmount bool
}

// DedupKey identifies a stored transaction for duplicate detection.
type DedupKey struct {
	Description string
	Date        Date
	Direction   Direction
	Amount      decimal.Decimal
	MatchAmount bool
}

// Key returns the duplicate key of c under the policy.
func (p DedupPolicy) Key(c Candidate) DedupKey {
	k := DedupKey{
		Description: c.Description,
		Date:        c.Date,
		Direction:   c.Direction,
		MatchAmount: p.MatchAmount,
	}
	if p.MatchAmount {
		k.Amount = c.Amount
	}
	return k
}

// Matches reports whether c is a duplicate under k.
func (k DedupKey) Matches(c Candidate) bool {
	if c.Description != k.Description || c.Date != k.Date || c.Direction != k.Direction {
		return false
	}
	return !k.MatchAmount || c.Amount.Equal(k.Amount)
}

// RowWriter is the per-row persistence used by CommitRows.
type RowWriter interface {
	Exists(ctx context.Context, key DedupKey) (bool, error)
	Insert(ctx context.Context, c Candidate) error
}

// CommitRows inserts candidates one at a time, skipping those that already
// exist. There is no all-or-nothing guarantee: a failing check or insert
// stops the loop and the counts so far are returned with the error.
func CommitRows(ctx context.Context, w RowWriter, candidates []Candidate, policy DedupPolicy) (CommitResult, error) {
	var res CommitResult
	for i, c := range candidates {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		exists, err := w.Exists(ctx, policy.Key(c))
		if err != nil {
			return res, fmt.Errorf("check row %d: %w", i+1, err)
		}
		if exists {
			res.Skipped++
			continue
		}

		if err := w.Insert(ctx, c); err != nil {
			return res, fmt.Errorf("insert row %d: %w", i+1, err)
		}
		res.Added++
	}
	return res, nil
}
