package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// SeparatorSampleSize is how much decoded text is inspected to pick the separator.
var SeparatorSampleSize = 4096

// separators are the candidates for CSV field separation, in tie-break order.
var separators = []rune{',', ';', '\t'}

// IsSpreadsheet reports whether a file name or extension selects the spreadsheet path.
func IsSpreadsheet(nameOrExt string) bool {
	ext := strings.ToLower(filepath.Ext(nameOrExt))
	if ext == "" {
		ext = strings.ToLower(nameOrExt)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
	}
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

// Ingest converts file bytes into a cell matrix. The extension (or file name)
// selects the spreadsheet path; anything else is read as delimited text.
// The result always has at least two rows.
func Ingest(data []byte, nameOrExt string) ([][]Cell, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrFileUnreadable)
	}

	var (
		matrix [][]Cell
		err    error
	)
	if IsSpreadsheet(nameOrExt) {
		matrix, err = ingestSpreadsheet(data)
	} else {
		matrix, err = ingestDelimited(data)
	}
	if err != nil {
		return nil, err
	}

	if len(matrix) < 2 {
		return nil, fmt.Errorf("%w: %d rows", ErrFileUnreadable, len(matrix))
	}
	return matrix, nil
}

func ingestDelimited(data []byte) ([][]Cell, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	sep := InferSeparator(text)
	records, err := parseCSV(text, sep)
	if err != nil {
		return nil, fmt.Errorf("%w: parse CSV: %v", ErrFileUnreadable, err)
	}

	matrix := make([][]Cell, 0, len(records))
	for _, rec := range records {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = TextCell(v)
		}
		matrix = append(matrix, row)
	}
	return matrix, nil
}

// InferSeparator picks the most frequent separator in a leading sample of text.
// Ties go to the comma.
func InferSeparator(text string) rune {
	sample := text
	if len(sample) > SeparatorSampleSize {
		sample = sample[:SeparatorSampleSize]
	}

	best, bestCount := separators[0], -1
	for _, sep := range separators {
		if n := strings.Count(sample, string(sep)); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// parseCSV tokenizes delimited text. Quoted fields may contain separators and
// newlines, and doubled quotes unescape to one.
func parseCSV(text string, sep rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// BuildTable locates the header row in matrix and returns the table below it
// together with the header's row index. It fails with ErrEmptyOrTooShort when
// no data row follows the header.
func BuildTable(matrix [][]Cell, rules HeaderRules) (*RawTable, int, error) {
	if len(matrix) < 2 {
		return nil, 0, fmt.Errorf("%w: %d rows", ErrEmptyOrTooShort, len(matrix))
	}

	idx := LocateHeader(matrix, rules)

	headers := make([]string, len(matrix[idx]))
	for i, c := range matrix[idx] {
		headers[i] = c.String()
	}

	table := NewRawTable(headers, matrix[idx+1:])
	if len(table.Rows) == 0 {
		return nil, idx, fmt.Errorf("%w: no data rows after header row %d", ErrEmptyOrTooShort, idx+1)
	}
	return table, idx, nil
}
