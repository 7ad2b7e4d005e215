package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/store"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ConfigurationRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m := core.NewColumnMapping()
	m.Date, m.Description, m.Amount, m.AmountMode = 1, 2, 4, core.AmountInverted
	sig := core.Signature([]string{"Booking", "Date", "Payee", "Memo", "Amount"})

	require.NoError(t, s.Save(ctx, "Amex", sig, m))
	got, err := s.Find(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m, got.Mapping)
	assert.Equal(t, "Amex", got.Name)
	assert.False(t, got.UpdatedAt.IsZero())

	m.AmountMode = core.AmountStandard
	require.NoError(t, s.Save(ctx, "Amex", sig, m))
	got, err = s.Find(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, core.AmountStandard, got.Mapping.AmountMode)

	cfgs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cfgs, 1)

	require.NoError(t, s.Delete(ctx, sig))
	assert.True(t, errors.Is(s.Delete(ctx, sig), store.ErrNotFound))

	got, err = s.Find(ctx, sig)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_BulkCreate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	day := core.Date{Year: 2024, Month: 3, Day: 5}
	cands := []core.Candidate{
		{Date: day, Description: "Coffee", Amount: decimal.RequireFromString("2.50"), Direction: core.DirectionExpense, Category: "restaurants", Tags: []string{"amex"}},
		{Date: day, Description: "Coffee", Amount: decimal.RequireFromString("3.10"), Direction: core.DirectionExpense, Category: "restaurants", Tags: []string{"amex"}},
	}

	// default key: the second coffee is a duplicate of the first
	res, err := s.BulkCreate(ctx, cands, core.DedupPolicy{})
	require.NoError(t, err)
	assert.Equal(t, core.CommitResult{Added: 1, Skipped: 1}, res)

	// amount-aware key keeps it
	res, err = s.BulkCreate(ctx, cands, core.DedupPolicy{MatchAmount: true})
	require.NoError(t, err)
	assert.Equal(t, core.CommitResult{Added: 1, Skipped: 1}, res)

	stored, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, day, stored[0].Date)
	assert.True(t, stored[1].Amount.Equal(decimal.RequireFromString("3.1")))
	assert.Equal(t, []string{"amex"}, stored[0].Tags)
}

func TestStore_CategoriesAndRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCategories(ctx, []core.Category{
		{ID: "c2", Name: "Shopping"},
		{ID: "c1", Name: "Restaurants"},
	}))
	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{ID: "c1", Name: "Restaurants"}, {ID: "c2", Name: "Shopping"}}, cats)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.RecordRun(ctx, core.ImportRun{ID: id, ConfigName: "x", Added: i, CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
