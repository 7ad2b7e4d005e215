package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetExtent is the size of a worksheet in rows and columns.
type sheetExtent struct {
	Rows int
	Cols int
}

// MaxSpreadsheetCells bounds the rows times columns of an ingested sheet.
// A few kilobytes of XML can address cells a million rows away.
var MaxSpreadsheetCells = 2_000_000

// ingestSpreadsheet reads the first worksheet. The declared dimension of the
// sheet is ignored: producers under-report it as often as they over-report
// it, so the matrix is sized from the stored cells alone.
func ingestSpreadsheet(data []byte) ([][]Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrFileUnreadable, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrFileUnreadable)
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrFileUnreadable, sheet, err)
	}

	extent := scannedExtent(raw)
	if extent.Rows*extent.Cols > MaxSpreadsheetCells {
		return nil, fmt.Errorf("%w: sheet %q spans %d rows by %d columns",
			ErrFileUnreadable, sheet, extent.Rows, extent.Cols)
	}

	dates := newDateStyles(f, sheet)
	matrix := make([][]Cell, extent.Rows)
	for r := 0; r < extent.Rows; r++ {
		row := make([]Cell, extent.Cols)
		for c, v := range raw[r] {
			if c >= extent.Cols {
				break
			}
			row[c] = dates.cell(r, c, v)
		}
		matrix[r] = row
	}
	return matrix, nil
}

// scannedExtent measures the cells actually stored. Trailing blank rows and
// columns do not count as content.
func scannedExtent(rows [][]string) sheetExtent {
	ext := sheetExtent{Rows: len(rows)}
	for ext.Rows > 0 && isBlankStrings(rows[ext.Rows-1]) {
		ext.Rows--
	}
	for _, row := range rows[:ext.Rows] {
		for c := len(row); c > ext.Cols; c-- {
			if strings.TrimSpace(row[c-1]) != "" {
				ext.Cols = c
				break
			}
		}
	}
	return ext
}

func isBlankStrings(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// dateStyles converts date-formatted numeric cells into native dates,
// caching the style lookups per style id.
type dateStyles struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	isDate   map[int]bool
}

func newDateStyles(f *excelize.File, sheet string) *dateStyles {
	ds := &dateStyles{f: f, sheet: sheet, isDate: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		ds.date1904 = *props.Date1904
	}
	return ds
}

func (ds *dateStyles) cell(row, col int, value string) Cell {
	if value == "" {
		return Cell{}
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return TextCell(value)
	}

	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return TextCell(value)
	}
	styleID, err := ds.f.GetCellStyle(ds.sheet, name)
	if err != nil || !ds.styleIsDate(styleID) {
		return TextCell(value)
	}

	t, err := excelize.ExcelDateToTime(serial, ds.date1904)
	if err != nil {
		return TextCell(value)
	}
	return Cell{Text: t.Format(isoDay), Time: t}
}

func (ds *dateStyles) styleIsDate(styleID int) bool {
	if v, ok := ds.isDate[styleID]; ok {
		return v
	}
	v := false
	if style, err := ds.f.GetStyle(styleID); err == nil && style != nil {
		v = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			v = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	ds.isDate[styleID] = v
	return v
}

// isDateNumFmt reports whether a built-in number format id renders a date.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date tokens
// outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == '[' && !inQuote:
			inBracket = true
		case r == ']' && !inQuote:
			inBracket = false
		case !inQuote && !inBracket:
			b.WriteRune(r)
		}
	}
	plain := b.String()
	return strings.ContainsAny(plain, "yd") || strings.Contains(plain, "mmm")
}
