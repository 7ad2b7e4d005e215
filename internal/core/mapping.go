package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoColumn marks a column role that is not assigned.
const NoColumn = -1

// AmountMode selects how sign and direction are derived from amount cells.
type AmountMode string

const (
	// AmountStandard: negative is an expense, non-negative is income.
	AmountStandard AmountMode = "standard"
	// AmountInverted: positive is an expense, non-positive is income.
	AmountInverted AmountMode = "inverted"
	// AmountSplit: separate outflow and inflow columns.
	AmountSplit AmountMode = "outflow_inflow"
)

// ParseAmountMode parses a mode name. Empty input yields AmountStandard.
func ParseAmountMode(s string) (AmountMode, error) {
	switch AmountMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AmountStandard:
		return AmountStandard, nil
	case AmountInverted:
		return AmountInverted, nil
	case AmountSplit, "split", "outflow/inflow":
		return AmountSplit, nil
	default:
		return "", fmt.Errorf("unknown amount mode %q", s)
	}
}

// ColumnMapping assigns semantic roles to column indices.
type ColumnMapping struct {
	Date        int        `json:"dateIndex"`
	Description int        `json:"descIndex"`
	Category    int        `json:"categoryIndex"`
	Amount      int        `json:"amountIndex"`
	AmountMode  AmountMode `json:"amountMode"`
	Outflow     int        `json:"outflowIndex"`
	Inflow      int        `json:"inflowIndex"`
}

// NewColumnMapping returns a mapping with every role unassigned.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		Date:        NoColumn,
		Description: NoColumn,
		Category:    NoColumn,
		Amount:      NoColumn,
		AmountMode:  AmountStandard,
		Outflow:     NoColumn,
		Inflow:      NoColumn,
	}
}

// UnmarshalJSON treats missing indices as unassigned rather than column 0.
func (m *ColumnMapping) UnmarshalJSON(b []byte) error {
	type plain ColumnMapping
	p := plain(NewColumnMapping())
	p.AmountMode = ""
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.AmountMode != "" {
		mode, err := ParseAmountMode(string(p.AmountMode))
		if err != nil {
			return err
		}
		p.AmountMode = mode
	}
	*m = ColumnMapping(p)
	m.AmountMode = m.Mode()
	return nil
}

// Mode returns the effective amount mode. A mapping without a mode uses the
// split mode when only outflow/inflow columns are assigned.
func (m ColumnMapping) Mode() AmountMode {
	if m.AmountMode != "" {
		return m.AmountMode
	}
	if m.Amount == NoColumn && (m.Outflow != NoColumn || m.Inflow != NoColumn) {
		return AmountSplit
	}
	return AmountStandard
}

// Usable reports whether the mapping has a date and an amount source.
func (m ColumnMapping) Usable() bool {
	return m.Validate(0) == nil
}

// Validate checks the mapping against a header of width columns.
// A width of 0 skips the range check.
func (m ColumnMapping) Validate(width int) error {
	if m.Date < 0 {
		return fmt.Errorf("%w: no date column", ErrMappingIncomplete)
	}

	switch m.Mode() {
	case AmountStandard, AmountInverted:
		if m.Amount < 0 {
			return fmt.Errorf("%w: no amount column", ErrMappingIncomplete)
		}
	case AmountSplit:
		if m.Outflow < 0 && m.Inflow < 0 {
			return fmt.Errorf("%w: no outflow or inflow column", ErrMappingIncomplete)
		}
	default:
		return fmt.Errorf("%w: unknown amount mode %q", ErrMappingIncomplete, m.AmountMode)
	}

	if width > 0 {
		for name, idx := range m.indices() {
			if idx >= width {
				return fmt.Errorf("%w: %s column %d, file has %d columns", ErrMappingOutOfRange, name, idx, width)
			}
		}
	}
	return nil
}

func (m ColumnMapping) indices() map[string]int {
	return map[string]int{
		"date":        m.Date,
		"description": m.Description,
		"category":    m.Category,
		"amount":      m.Amount,
		"outflow":     m.Outflow,
		"inflow":      m.Inflow,
	}
}

// SuggestMapping guesses column roles from header names using the rule set's
// column hints. The result is a proposal and may not be usable.
func SuggestMapping(headers []string, hints ColumnHints) ColumnMapping {
	m := NewColumnMapping()
	taken := make(map[int]bool)

	pick := func(fragments []string) int {
		// exact matches first, then containment
		for i, h := range headers {
			h = strings.ToLower(CleanCell(h))
			if taken[i] || h == "" {
				continue
			}
			for _, f := range fragments {
				if h == f {
					taken[i] = true
					return i
				}
			}
		}
		for i, h := range headers {
			h = strings.ToLower(CleanCell(h))
			if taken[i] || h == "" {
				continue
			}
			for _, f := range fragments {
				if strings.Contains(h, f) {
					taken[i] = true
					return i
				}
			}
		}
		return NoColumn
	}

	m.Date = pick(hints.Date)
	m.Amount = pick(hints.Amount)
	if m.Amount == NoColumn {
		m.Outflow = pick(hints.Outflow)
		m.Inflow = pick(hints.Inflow)
		if m.Outflow != NoColumn || m.Inflow != NoColumn {
			m.AmountMode = AmountSplit
		}
	}
	m.Description = pick(hints.Description)
	m.Category = pick(hints.Category)
	return m
}
