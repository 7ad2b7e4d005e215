package rules_test

import (
	"testing"

	"github.com/JonMunkholm/txnimport/internal/core"
	_ "github.com/JonMunkholm/txnimport/internal/core/rules"
)

func mustRules(t *testing.T, locale string) core.RuleSet {
	t.Helper()
	rs, ok := core.Rules(locale)
	if !ok {
		t.Fatalf("locale %q not registered", locale)
	}
	if err := rs.Validate(); err != nil {
		t.Fatalf("locale %q invalid: %v", locale, err)
	}
	return rs
}

func TestLocalesRegistered(t *testing.T) {
	got := core.Locales()
	if len(got) != 2 || got[0] != "en" || got[1] != "it" {
		t.Errorf("Locales = %v, want [en it]", got)
	}
}

func TestItalian_CategoryFallbacks(t *testing.T) {
	c := core.NewClassifier(mustRules(t, "it"), nil)

	tests := []struct {
		category string
		desc     string
		dir      core.Direction
		want     string
	}{
		{desc: "Esselunga Spesa", dir: core.DirectionExpense, want: "shopping"},
		{desc: "Bonifico stipendio", dir: core.DirectionIncome, want: "salary"},
		{desc: "Bonifico da Luca", dir: core.DirectionIncome, want: core.CategoryOtherIncome},
		{desc: "Commissioni bancarie", dir: core.DirectionExpense, want: core.CategoryOther},
		{category: "Alimentari", desc: "POS 4411", dir: core.DirectionExpense, want: "shopping"},
		{category: "Carburante", desc: "Q8 Milano", dir: core.DirectionExpense, want: "transport"},
		{desc: "Pagamento Trenitalia", dir: core.DirectionExpense, want: "transport"},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.category, tt.desc, tt.dir); got != tt.want {
			t.Errorf("Classify(%q, %q, %s) = %q, want %q", tt.category, tt.desc, tt.dir, got, tt.want)
		}
	}
}

func TestItalian_HeaderAfterBanner(t *testing.T) {
	rows := [][]string{
		{"Estratto conto", "", "", ""},
		{"Intestatario", "Mario Rossi", "", ""},
		{"Periodo dal 01/01/2024 al 31/03/2024", "", "", ""},
		{"Data", "Importo", "Descrizione", "Categoria"},
		{"05/03/2024", "-32,40", "Esselunga Spesa", "Spesa"},
	}
	matrix := make([][]core.Cell, len(rows))
	for i, r := range rows {
		for _, v := range r {
			matrix[i] = append(matrix[i], core.TextCell(v))
		}
	}

	rs := mustRules(t, "it")
	if got := core.LocateHeader(matrix, rs.Header); got != 3 {
		t.Errorf("LocateHeader = %d, want 3", got)
	}

	m := core.SuggestMapping(rows[3], rs.Columns)
	if m.Date != 0 || m.Amount != 1 || m.Description != 2 || m.Category != 3 {
		t.Errorf("SuggestMapping = %+v, want date 0, amount 1, description 2, category 3", m)
	}
}

func TestEnglish_SplitColumns(t *testing.T) {
	rs := mustRules(t, "en")
	m := core.SuggestMapping([]string{"Transaction Date", "Details", "Money Out", "Money In", "Balance"}, rs.Columns)
	if m.Mode() != core.AmountSplit || m.Outflow != 2 || m.Inflow != 3 {
		t.Errorf("SuggestMapping = %+v, want split with outflow 2 and inflow 3", m)
	}

	c := core.NewClassifier(rs, nil)
	if got := c.Classify("", "ACME LTD PAYROLL", core.DirectionIncome); got != "salary" {
		t.Errorf("Classify payroll = %q, want salary", got)
	}
}
