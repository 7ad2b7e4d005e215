package core

import (
	"context"
	"sync"
)

// testRules is a small Italian/English rule set independent of the
// registered locales.
func testRules() RuleSet {
	return RuleSet{
		Locale: "test",
		Header: HeaderRules{
			Keywords: []string{"data", "importo", "descrizione", "categoria", "date", "amount", "description", "category"},
		},
		Columns: ColumnHints{
			Date:        []string{"data", "date"},
			Description: []string{"descrizione", "description"},
			Category:    []string{"categoria", "category"},
			Amount:      []string{"importo", "amount"},
			Outflow:     []string{"uscite", "debit"},
			Inflow:      []string{"entrate", "credit"},
		},
		Aliases: []CategoryAlias{
			{Contains: []string{"super", "spesa", "shop"}, Category: "shopping"},
			{Contains: []string{"ristor", "restaurant"}, Category: "restaurants"},
		},
		Descriptions: []KeywordRule{
			{Keyword: "esselunga", Category: "shopping"},
			{Keyword: "stipendio", Category: "salary", Direction: DirectionIncome},
			{Keyword: "pizzeria", Category: "restaurants"},
			{Keyword: "rimborso", Category: "refunds", Direction: DirectionIncome},
		},
	}.withDefaults()
}

func textRows(rows ...[]string) [][]Cell {
	out := make([][]Cell, len(rows))
	for i, r := range rows {
		out[i] = make([]Cell, len(r))
		for j, v := range r {
			out[i][j] = TextCell(v)
		}
	}
	return out
}

// memMappings is an in-memory MappingStore for service tests.
type memMappings struct {
	mu    sync.Mutex
	byKey map[string]ImportConfiguration
	saves int
}

func newMemMappings() *memMappings {
	return &memMappings{byKey: make(map[string]ImportConfiguration)}
}

func (m *memMappings) Find(_ context.Context, sig string) (*ImportConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.byKey[sig]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *memMappings) Save(_ context.Context, name, sig string, mapping ColumnMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.byKey[sig] = ImportConfiguration{Name: name, HeaderSignature: sig, Mapping: mapping}
	return nil
}

func (m *memMappings) List(context.Context) ([]ImportConfiguration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ImportConfiguration, 0, len(m.byKey))
	for _, cfg := range m.byKey {
		out = append(out, cfg)
	}
	return out, nil
}

func (m *memMappings) Delete(_ context.Context, sig string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byKey, sig)
	return nil
}

// memLedger is an in-memory TransactionStore built on CommitRows.
type memLedger struct {
	rows    []Candidate
	failAt  int // fail the insert of this row number when > 0
	inserts int
}

func (l *memLedger) BulkCreate(ctx context.Context, cands []Candidate, policy DedupPolicy) (CommitResult, error) {
	return CommitRows(ctx, l, cands, policy)
}

func (l *memLedger) Exists(_ context.Context, key DedupKey) (bool, error) {
	for _, r := range l.rows {
		if key.Matches(r) {
			return true, nil
		}
	}
	return false, nil
}

func (l *memLedger) Insert(_ context.Context, c Candidate) error {
	l.inserts++
	if l.failAt > 0 && l.inserts == l.failAt {
		return errDiskFull
	}
	l.rows = append(l.rows, c)
	return nil
}

type stubCategories struct {
	cats []Category
	err  error
}

func (s stubCategories) Categories(context.Context) ([]Category, error) {
	return s.cats, s.err
}

type memRuns struct {
	runs []ImportRun
}

func (r *memRuns) RecordRun(_ context.Context, run ImportRun) error {
	r.runs = append([]ImportRun{run}, r.runs...)
	return nil
}

func (r *memRuns) ListRuns(_ context.Context, limit int) ([]ImportRun, error) {
	if limit > 0 && limit < len(r.runs) {
		return r.runs[:limit], nil
	}
	return r.runs, nil
}
