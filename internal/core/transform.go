package core

import (
	"context"
	"strings"
	"unicode"
)

// TransformStats counts what happened to the rows of a table.
// Dropped rows are never reported individually.
type TransformStats struct {
	Rows       int `json:"rows"`
	Kept       int `json:"kept"`
	BadDate    int `json:"badDate"`
	BadAmount  int `json:"badAmount"`
	ZeroAmount int `json:"zeroAmount"`
	Empty      int `json:"empty"`
	// BothSides counts kept rows whose outflow and inflow cells were both
	// non-zero; the outflow was used.
	BothSides int `json:"bothSides"`
}

// Dropped returns the number of rows that produced no candidate.
func (s TransformStats) Dropped() int {
	return s.BadDate + s.BadAmount + s.ZeroAmount + s.Empty
}

func (s *TransformStats) count(reason dropReason) {
	switch reason {
	case keepRow:
		s.Kept++
	case dropBadDate:
		s.BadDate++
	case dropBadAmount:
		s.BadAmount++
	case dropZeroAmount:
		s.ZeroAmount++
	case dropEmpty:
		s.Empty++
	}
}

// Transformer turns table rows into candidates for one column mapping.
type Transformer struct {
	mapping     ColumnMapping
	amounts     amountSource
	classifier  *Classifier
	tag         string
	placeholder string
}

// NewTransformer prepares a transformer. The mapping must be usable.
// A nil classifier only produces the fallback buckets.
func NewTransformer(mapping ColumnMapping, configName string, classifier *Classifier) (*Transformer, error) {
	if err := mapping.Validate(0); err != nil {
		return nil, err
	}
	if classifier == nil {
		classifier = NewClassifier(RuleSet{}, nil)
	}
	return &Transformer{
		mapping:     mapping,
		amounts:     newAmountSource(mapping),
		classifier:  classifier,
		tag:         SanitizeTag(configName),
		placeholder: classifier.rules.Placeholder,
	}, nil
}

// Tag returns the source tag attached to every candidate.
func (t *Transformer) Tag() string {
	return t.tag
}

// Transform converts every row of table. Rows with a bad date or a zero or
// unparseable amount are dropped and only counted.
func (t *Transformer) Transform(ctx context.Context, table *RawTable) ([]Candidate, TransformStats, error) {
	stats := TransformStats{Rows: len(table.Rows)}
	out := make([]Candidate, 0, len(table.Rows))

	for i, row := range table.Rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		cand, reading, reason := t.row(row)
		stats.count(reason)
		if reason != keepRow {
			continue
		}
		if reading.BothSides {
			stats.BothSides++
		}
		out = append(out, cand)
	}
	return out, stats, nil
}

func (t *Transformer) row(row []Cell) (Candidate, amountReading, dropReason) {
	if isEmptyRow(row) {
		return Candidate{}, amountReading{}, dropEmpty
	}

	date, err := ParseDate(cellAt(row, t.mapping.Date))
	if err != nil {
		return Candidate{}, amountReading{}, dropBadDate
	}

	reading, reason := t.amounts.read(row)
	if reason != keepRow {
		return Candidate{}, reading, reason
	}

	desc := CollapseSpaces(CleanCell(cellAt(row, t.mapping.Description).Text))
	if desc == "" {
		desc = t.placeholder
	}

	category := t.classifier.Classify(cellAt(row, t.mapping.Category).Text, desc, reading.Direction)

	return Candidate{
		Date:        date,
		Description: desc,
		Amount:      reading.Amount,
		Direction:   reading.Direction,
		Category:    category,
		Tags:        []string{t.tag},
	}, reading, keepRow
}

func cellAt(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{}
	}
	return row[col]
}

// SanitizeTag derives a source tag from a configuration name: lowercase,
// runs of anything but letters and digits become one underscore, and the
// ends are trimmed. An empty result falls back to "import".
func SanitizeTag(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "import"
	}
	return b.String()
}
