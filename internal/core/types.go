// Package core provides the business logic for transaction imports.
// This package has no UI or storage dependencies and can be used by any frontend.
package core

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cell is a single value of an ingested table.
// Spreadsheet cells formatted as dates carry a non-zero Time.
type Cell struct {
	Text string
	Time time.Time
}

// TextCell returns a plain text cell.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// IsTime reports whether the cell holds a native date value.
func (c Cell) IsTime() bool {
	return !c.Time.IsZero()
}

// String returns the cell text, or the ISO day for native dates.
func (c Cell) String() string {
	if c.IsTime() && c.Text == "" {
		return c.Time.Format(isoDay)
	}
	return c.Text
}

// RawTable is the intermediate matrix produced by ingestion.
// Every row has exactly len(Headers) cells.
type RawTable struct {
	Headers []string
	Rows    [][]Cell
}

// NewRawTable builds a table from a header row and data rows,
// padding short rows and truncating long ones to the header width.
func NewRawTable(headers []string, rows [][]Cell) *RawTable {
	width := len(headers)
	out := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		fixed := make([]Cell, width)
		copy(fixed, row)
		out = append(out, fixed)
	}
	cleaned := make([]string, width)
	for i, h := range headers {
		cleaned[i] = CleanCell(h)
	}
	return &RawTable{Headers: cleaned, Rows: out}
}

// Direction tells whether money left or entered the account.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

// Valid returns true for the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionExpense || d == DirectionIncome
}

// Date is a calendar day without time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const isoDay = "2006-01-02"

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoDay, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.Time().Format(isoDay)
}

// MarshalText encodes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseISODate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Candidate is a parsed transaction that has not been committed yet.
type Candidate struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // magnitude, never negative
	Direction   Direction       `json:"direction"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
}

// SignedAmount returns the amount negated for expenses.
func (c Candidate) SignedAmount() decimal.Decimal {
	if c.Direction == DirectionExpense {
		return c.Amount.Neg()
	}
	return c.Amount
}

// ImportConfiguration is a saved column mapping for one header layout.
type ImportConfiguration struct {
	Name            string        `json:"name"`
	HeaderSignature string        `json:"headerSignature"`
	Mapping         ColumnMapping `json:"mapping"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CommitResult reports the outcome of a commit.
type CommitResult struct {
	Added   int `json:"addedCount"`
	Skipped int `json:"skippedCount"`
}

// Category is a canonical category offered by the category collaborator.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImportRun records one committed import.
type ImportRun struct {
	ID         string    `json:"id"`
	ConfigName string    `json:"configName"`
	Signature  string    `json:"signature"`
	FileName   string    `json:"fileName"`
	Added      int       `json:"added"`
	Skipped    int       `json:"skipped"`
	Dropped    int       `json:"dropped"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MappingStore persists import configurations keyed by header signature.
type MappingStore interface {
	// Find returns the configuration saved for signature, or nil if none.
	Find(ctx context.Context, signature string) (*ImportConfiguration, error)
	// Save upserts the configuration for signature. Last save wins.
	Save(ctx context.Context, name, signature string, mapping ColumnMapping) error
	List(ctx context.Context) ([]ImportConfiguration, error)
	Delete(ctx context.Context, signature string) error
}

// TransactionStore persists candidates, skipping duplicates of stored rows.
type TransactionStore interface {
	BulkCreate(ctx context.Context, candidates []Candidate, policy DedupPolicy) (CommitResult, error)
}

// CategorySource exposes the canonical category list.
type CategorySource interface {
	Categories(ctx context.Context) ([]Category, error)
}

// RunRecorder keeps the import history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]ImportRun, error)
}
