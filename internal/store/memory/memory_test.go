package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/store"
)

func TestStore_MappingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := core.NewColumnMapping()
	m.Date, m.Amount, m.AmountMode = 0, 2, core.AmountInverted
	sig := core.Signature([]string{"Date", "Desc", "Amount"})

	require.NoError(t, s.Save(ctx, "Card", sig, m))
	got, err := s.Find(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m, got.Mapping)
	assert.Equal(t, "Card", got.Name)

	// last save wins
	m.AmountMode = core.AmountStandard
	require.NoError(t, s.Save(ctx, "Card v2", sig, m))
	got, err = s.Find(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, "Card v2", got.Name)
	assert.Equal(t, core.AmountStandard, got.Mapping.AmountMode)

	miss, err := s.Find(ctx, "nothing")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, s.Delete(ctx, sig))
	err = s.Delete(ctx, sig)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStore_BulkCreateTwice(t *testing.T) {
	ctx := context.Background()
	s := New()

	cands := []core.Candidate{
		{Date: core.Date{Year: 2024, Month: 3, Day: 1}, Description: "Bar", Amount: decimal.NewFromInt(2), Direction: core.DirectionExpense},
		{Date: core.Date{Year: 2024, Month: 3, Day: 2}, Description: "Salary", Amount: decimal.NewFromInt(900), Direction: core.DirectionIncome},
	}

	res, err := s.BulkCreate(ctx, cands, core.DedupPolicy{})
	require.NoError(t, err)
	assert.Equal(t, core.CommitResult{Added: 2}, res)

	res, err = s.BulkCreate(ctx, cands, core.DedupPolicy{})
	require.NoError(t, err)
	assert.Equal(t, core.CommitResult{Skipped: 2}, res)
	assert.Len(t, s.Transactions(), 2)
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	s := New(core.Category{ID: "shopping", Name: "Shopping"})

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.RecordRun(ctx, core.ImportRun{ID: id}))
	}
	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{ID: "shopping", Name: "Shopping"}}, cats)
}
