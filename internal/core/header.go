package core

import (
	"regexp"
	"strings"
)

var (
	// a day/month/year triple in any order with / . or - separators
	headerDatePattern = regexp.MustCompile(`\b\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4}\b`)
	// a number with one or two decimals
	headerAmountPattern = regexp.MustCompile(`-?\d+[.,]\d{1,2}\b`)
)

// LocateHeader returns the index of the row most likely to be the header.
// Exports often prepend banner or account metadata rows, so the first
// rules.ScanRows rows are scored and the best one wins. Ties go to the
// earliest row and a matrix where nothing scores above zero yields row 0.
func LocateHeader(matrix [][]Cell, rules HeaderRules) int {
	limit := rules.ScanRows
	if limit <= 0 {
		limit = DefaultHeaderScanRows
	}
	if limit > len(matrix) {
		limit = len(matrix)
	}

	best, bestScore := 0, 0
	for i := 0; i < limit; i++ {
		if s := ScoreHeaderRow(matrix[i], rules); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// ScoreHeaderRow scores one row against the header vocabulary.
func ScoreHeaderRow(row []Cell, rules HeaderRules) int {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c.IsTime() {
			// a native date is data, never a header label
			cells = append(cells, c.String())
			continue
		}
		cells = append(cells, strings.ToLower(CleanCell(c.Text)))
	}
	joined := strings.Join(cells, " ")
	if strings.TrimSpace(joined) == "" {
		return 0
	}

	score := 0
	for _, kw := range rules.Keywords {
		if strings.Contains(joined, kw) {
			score += rules.SubstringWeight
		}
	}
	for _, cell := range cells {
		for _, kw := range rules.Keywords {
			if cell == kw {
				score += rules.ExactWeight
				break
			}
		}
	}

	if headerDatePattern.MatchString(joined) {
		score -= rules.DatePenalty
	}
	if headerAmountPattern.MatchString(joined) {
		score -= rules.AmountPenalty
	}
	return score
}
