package core

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

// ----------------------------------------------------------------------------
// Delimited text
// ----------------------------------------------------------------------------

func TestParseCSV_QuotedNewline(t *testing.T) {
	text := "a;1.000,50;\"line1\nline2\""
	sep := InferSeparator(text)
	if sep != ';' {
		t.Fatalf("InferSeparator = %q, want ';'", sep)
	}

	records, err := parseCSV(text, sep)
	if err != nil {
		t.Fatalf("parseCSV error: %v", err)
	}
	want := [][]string{{"a", "1.000,50", "line1\nline2"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("parseCSV = %q, want %q", records, want)
	}
}

func TestParseCSV_DoubledQuotes(t *testing.T) {
	records, err := parseCSV(`"say ""hi""",b`, ',')
	if err != nil {
		t.Fatalf("parseCSV error: %v", err)
	}
	if got := records[0][0]; got != `say "hi"` {
		t.Errorf("field = %q, want %q", got, `say "hi"`)
	}
}

func TestInferSeparator(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{name: "semicolons", text: "a;b;c\n1;2,5;3", want: ';'},
		{name: "commas", text: "a,b,c\n1,2,3", want: ','},
		{name: "tabs", text: "a\tb\tc\n1\t2\t3", want: '\t'},
		{name: "tie goes to comma", text: "a,b;c", want: ','},
		{name: "no separator", text: "abc", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferSeparator(tt.text); got != tt.want {
				t.Errorf("InferSeparator(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIngest_CSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFData;Importo;Descrizione\r\n05/03/2024;-12,50;Esselunga\r\n")
	matrix, err := Ingest(data, "estratto.csv")
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if len(matrix) != 2 {
		t.Fatalf("rows = %d, want 2", len(matrix))
	}
	if got := matrix[0][0].Text; got != "Data" {
		t.Errorf("first header = %q, want %q (BOM stripped)", got, "Data")
	}
	if got := matrix[1][2].Text; got != "Esselunga" {
		t.Errorf("last cell = %q, want %q", got, "Esselunga")
	}
}

func TestIngest_Windows1252(t *testing.T) {
	data := []byte("Data;Descrizione\n05/03/2024;Caff\xe8\n")
	matrix, err := Ingest(data, "legacy.csv")
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if got := matrix[1][1].Text; got != "Caffè" {
		t.Errorf("decoded cell = %q, want %q", got, "Caffè")
	}
}

func TestIngest_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Date,Amount\n2024-03-05,10.00\n"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	matrix, err := Ingest(data, "export.csv")
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if got := matrix[0][0].Text; got != "Date" {
		t.Errorf("first header = %q, want %q", got, "Date")
	}
	if got := matrix[1][1].Text; got != "10.00" {
		t.Errorf("amount cell = %q, want %q", got, "10.00")
	}
}

func TestIngest_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ext  string
	}{
		{name: "empty", data: nil, ext: ".csv"},
		{name: "single row", data: []byte("a,b,c\n"), ext: ".csv"},
		{name: "binary", data: []byte("a,b\x00c\n1,2\n"), ext: ".csv"},
		{name: "corrupt workbook", data: []byte("not a zip"), ext: ".xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ingest(tt.data, tt.ext)
			if !errors.Is(err, ErrFileUnreadable) {
				t.Errorf("Ingest error = %v, want ErrFileUnreadable", err)
			}
		})
	}
}

func TestIsSpreadsheet(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"report.xlsx", true},
		{"REPORT.XLSM", true},
		{".xlsx", true},
		{"xlsx", true},
		{"report.csv", false},
		{"report.xls", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSpreadsheet(tt.in); got != tt.want {
			t.Errorf("IsSpreadsheet(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Spreadsheets
// ----------------------------------------------------------------------------

func TestIngest_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}

	set := func(cell string, v any) {
		t.Helper()
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}
	set("A1", "Movimenti conto")
	set("A3", "Data")
	set("B3", "Importo")
	set("C3", "Descrizione")
	set("A4", 45356) // 2024-03-05
	set("B4", -12.5)
	set("C4", "Esselunga")
	set("A5", "06/03/2024")
	set("B5", 1500)
	set("C5", "Bonifico stipendio")
	set("D5", "note")
	if err := f.SetCellStyle(sheet, "A4", "A4", dateStyle); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	matrix, err := Ingest(buf.Bytes(), "movimenti.xlsx")
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if len(matrix) != 5 {
		t.Fatalf("rows = %d, want 5", len(matrix))
	}
	for i, row := range matrix {
		if len(row) != 4 {
			t.Errorf("row %d width = %d, want 4", i, len(row))
		}
	}

	date := matrix[3][0]
	if !date.IsTime() {
		t.Fatalf("A4 is not a native date: %+v", date)
	}
	if got := DateOf(date.Time).String(); got != "2024-03-05" {
		t.Errorf("A4 date = %s, want 2024-03-05", got)
	}
	if got := matrix[3][1].Text; got != "-12.5" {
		t.Errorf("B4 = %q, want %q", got, "-12.5")
	}
	if matrix[4][0].IsTime() {
		t.Errorf("A5 text date became native: %+v", matrix[4][0])
	}

	table, headerRow, err := BuildTable(matrix, testRules().Header)
	if err != nil {
		t.Fatalf("BuildTable error: %v", err)
	}
	if headerRow != 2 {
		t.Errorf("header row = %d, want 2", headerRow)
	}
	if len(table.Rows) != 2 {
		t.Errorf("data rows = %d, want 2", len(table.Rows))
	}
}

// statementWorkbook writes a sheet with a header and n data rows and
// declares dim as its used range.
func statementWorkbook(t *testing.T, n int, dim string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]any{{"Data", "Importo", "Descrizione"}}
	for i := 0; i < n; i++ {
		rows = append(rows, []any{fmt.Sprintf("%02d/03/2024", i+1), -1.5 * float64(i+1), fmt.Sprintf("Spesa %d", i+1)})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow(%s): %v", cell, err)
		}
	}
	if err := f.SetSheetDimension(sheet, dim); err != nil {
		t.Fatalf("SetSheetDimension(%s): %v", dim, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestIngest_SpreadsheetDeclaredDimension(t *testing.T) {
	tests := []struct {
		name     string
		dim      string
		wantRows int
		wantCols int
	}{
		{name: "under-reported keeps hidden rows", dim: "A1:B2", wantRows: 6, wantCols: 3},
		{name: "over-reported is not padded", dim: "A1:CV200000", wantRows: 6, wantCols: 3},
		{name: "exact", dim: "A1:C6", wantRows: 6, wantCols: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matrix, err := Ingest(statementWorkbook(t, 5, tt.dim), "statement.xlsx")
			if err != nil {
				t.Fatalf("Ingest error: %v", err)
			}
			if len(matrix) != tt.wantRows {
				t.Fatalf("rows = %d, want %d", len(matrix), tt.wantRows)
			}
			for i, row := range matrix {
				if len(row) != tt.wantCols {
					t.Errorf("row %d width = %d, want %d", i, len(row), tt.wantCols)
				}
			}
			if got := matrix[5][2].Text; got != "Spesa 5" {
				t.Errorf("last description = %q, want %q", got, "Spesa 5")
			}
		})
	}
}

func TestIngest_SpreadsheetTooManyCells(t *testing.T) {
	old := MaxSpreadsheetCells
	MaxSpreadsheetCells = 10
	defer func() { MaxSpreadsheetCells = old }()

	_, err := Ingest(statementWorkbook(t, 5, "A1:C6"), "statement.xlsx")
	if !errors.Is(err, ErrFileUnreadable) {
		t.Errorf("Ingest error = %v, want ErrFileUnreadable", err)
	}
}

func TestScannedExtent(t *testing.T) {
	got := scannedExtent([][]string{
		{"Data", "Importo"},
		{"1", "2"},
		{"3", "4", "5", " "},
		{"6"},
		{"", ""},
	})
	if got != (sheetExtent{Rows: 4, Cols: 3}) {
		t.Errorf("scannedExtent = %+v, want {4 3}", got)
	}
	if got := scannedExtent(nil); got != (sheetExtent{}) {
		t.Errorf("scannedExtent(nil) = %+v, want zero", got)
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"dd/mm/yyyy", true},
		{"yyyy-mm-dd hh:mm", true},
		{"mmm-yy", true},
		{"#,##0.00", false},
		{`0.00 "days"`, false},
		{"[Red]0.00", false},
		{"[$-410]#,##0", false},
	}
	for _, tt := range tests {
		if got := isDateFormatCode(tt.code); got != tt.want {
			t.Errorf("isDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// BuildTable
// ----------------------------------------------------------------------------

func TestBuildTable_PadsAndTruncates(t *testing.T) {
	matrix := textRows(
		[]string{"Data", "Importo", "Descrizione"},
		[]string{"05/03/2024", "-1,00"},
		[]string{"", "", ""},
		[]string{"06/03/2024", "2,00", "x", "extra"},
	)
	table, _, err := BuildTable(matrix, testRules().Header)
	if err != nil {
		t.Fatalf("BuildTable error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (blank row skipped)", len(table.Rows))
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			t.Errorf("row %d width = %d, want %d", i, len(row), len(table.Headers))
		}
	}
}

func TestBuildTable_TooShort(t *testing.T) {
	matrix := textRows(
		[]string{"banner"},
		[]string{"Data", "Importo"},
		[]string{"", ""},
	)
	_, _, err := BuildTable(matrix, testRules().Header)
	if !errors.Is(err, ErrEmptyOrTooShort) {
		t.Errorf("BuildTable error = %v, want ErrEmptyOrTooShort", err)
	}
}
