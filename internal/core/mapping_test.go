package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestColumnMapping_Validate(t *testing.T) {
	withDate := func(f func(*ColumnMapping)) ColumnMapping {
		m := NewColumnMapping()
		m.Date = 0
		f(&m)
		return m
	}

	tests := []struct {
		name    string
		mapping ColumnMapping
		width   int
		wantErr error
	}{
		{name: "nothing assigned", mapping: NewColumnMapping(), wantErr: ErrMappingIncomplete},
		{name: "date only", mapping: withDate(func(*ColumnMapping) {}), wantErr: ErrMappingIncomplete},
		{name: "date and amount", mapping: withDate(func(m *ColumnMapping) { m.Amount = 1 })},
		{name: "inverted", mapping: withDate(func(m *ColumnMapping) { m.Amount = 1; m.AmountMode = AmountInverted })},
		{name: "split outflow only", mapping: withDate(func(m *ColumnMapping) { m.Outflow = 2; m.AmountMode = AmountSplit })},
		{name: "split without columns", mapping: withDate(func(m *ColumnMapping) { m.AmountMode = AmountSplit }), wantErr: ErrMappingIncomplete},
		{name: "amount missing in standard", mapping: withDate(func(m *ColumnMapping) { m.Inflow = 2; m.AmountMode = AmountStandard }), wantErr: ErrMappingIncomplete},
		{name: "out of range", mapping: withDate(func(m *ColumnMapping) { m.Amount = 5 }), width: 3, wantErr: ErrMappingOutOfRange},
		{name: "in range", mapping: withDate(func(m *ColumnMapping) { m.Amount = 2 }), width: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate(tt.width)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestColumnMapping_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want ColumnMapping
	}{
		{
			name: "missing indices are unassigned",
			json: `{"dateIndex":0,"amountIndex":2}`,
			want: ColumnMapping{Date: 0, Description: NoColumn, Category: NoColumn, Amount: 2, AmountMode: AmountStandard, Outflow: NoColumn, Inflow: NoColumn},
		},
		{
			name: "split inferred",
			json: `{"dateIndex":0,"outflowIndex":3,"inflowIndex":4}`,
			want: ColumnMapping{Date: 0, Description: NoColumn, Category: NoColumn, Amount: NoColumn, AmountMode: AmountSplit, Outflow: 3, Inflow: 4},
		},
		{
			name: "explicit mode alias",
			json: `{"dateIndex":1,"amountIndex":0,"amountMode":"INVERTED"}`,
			want: ColumnMapping{Date: 1, Description: NoColumn, Category: NoColumn, Amount: 0, AmountMode: AmountInverted, Outflow: NoColumn, Inflow: NoColumn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ColumnMapping
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal = %+v, want %+v", got, tt.want)
			}
		})
	}

	var m ColumnMapping
	if err := json.Unmarshal([]byte(`{"amountMode":"sideways"}`), &m); err == nil {
		t.Error("Unmarshal with unknown mode succeeded, want error")
	}
}

func TestSuggestMapping(t *testing.T) {
	hints := testRules().Columns

	t.Run("single amount column", func(t *testing.T) {
		got := SuggestMapping([]string{"Data valuta", "Data", "Descrizione", "Importo"}, hints)
		if got.Date != 1 {
			t.Errorf("Date = %d, want 1 (exact match preferred)", got.Date)
		}
		if got.Description != 2 || got.Amount != 3 {
			t.Errorf("Description, Amount = %d, %d, want 2, 3", got.Description, got.Amount)
		}
		if got.Mode() != AmountStandard {
			t.Errorf("Mode = %s, want %s", got.Mode(), AmountStandard)
		}
	})

	t.Run("outflow and inflow", func(t *testing.T) {
		got := SuggestMapping([]string{"Data", "Uscite", "Entrate", "Descrizione"}, hints)
		if got.Outflow != 1 || got.Inflow != 2 {
			t.Errorf("Outflow, Inflow = %d, %d, want 1, 2", got.Outflow, got.Inflow)
		}
		if got.Mode() != AmountSplit {
			t.Errorf("Mode = %s, want %s", got.Mode(), AmountSplit)
		}
		if !got.Usable() {
			t.Error("suggested split mapping is not usable")
		}
	})

	t.Run("unknown headers", func(t *testing.T) {
		got := SuggestMapping([]string{"foo", "bar"}, hints)
		if got.Usable() {
			t.Errorf("mapping for unknown headers is usable: %+v", got)
		}
	})
}
