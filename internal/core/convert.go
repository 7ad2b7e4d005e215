package core

// convert.go turns raw cell text into dates and amounts.
//
// Bank exports mix locales freely:
//   - Dates are day-first by default, but a part above 1000 is always the year
//   - Amounts use either "." or "," as decimal mark
//   - Excel formula prefixes (="value") and stray quotes wrap values
//   - Accounting format wraps negatives in parentheses

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errEmptyValue = errors.New("empty value")
	errBadNumber  = errors.New("invalid number")
	errBadDate    = errors.New("invalid date")
)

// textDateLayouts are tried when a date string does not split into three numbers.
var textDateLayouts = []string{
	"2 Jan 2006", "02 Jan 2006", "Jan 2, 2006", "2 January 2006", "January 2, 2006",
	"20060102",
}

// ParseAmount parses a number written with either "." or "," as decimal mark.
// Everything but digits, ".", "," and "-" is stripped first, and a trailing
// minus sign counts as a leading one. If the last "."
// comes after the last ",", commas are thousands separators; otherwise dots
// are thousands separators and the comma is the decimal mark.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = CleanCell(s)
	if s == "" {
		return decimal.Zero, errEmptyValue
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, errBadNumber
	}
	// "12,50-" is a negative amount in some European exports
	if strings.HasSuffix(cleaned, "-") && strings.Count(cleaned, "-") == 1 {
		cleaned = "-" + strings.TrimSuffix(cleaned, "-")
	}

	if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, errBadNumber
	}
	if negative && d.IsPositive() {
		d = d.Neg()
	}
	return d, nil
}

// ParseDate parses a date cell. Native dates keep their wall-clock calendar
// day and drop the time of day. Text is cut at the first whitespace and split on "/", "-"
// or "."; with three numeric parts a part above 1000 is the year, otherwise
// the order is day, month, year. Two-digit years are prefixed with "20".
func ParseDate(c Cell) (Date, error) {
	if c.IsTime() {
		return DateOf(c.Time), nil
	}
	return ParseDateString(c.Text)
}

// ParseDateString parses a textual date, see ParseDate.
func ParseDateString(s string) (Date, error) {
	s = CleanCell(s)
	if s == "" {
		return Date{}, errEmptyValue
	}

	token := s
	if i := strings.IndexAny(token, " \t"); i >= 0 {
		token = token[:i]
	}
	if strings.IndexByte(token, 'T') == len(isoDay) {
		token = token[:len(isoDay)]
	}

	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})

	if len(parts) == 3 {
		if d, ok := dateFromParts(parts); ok {
			return d, nil
		}
		return Date{}, errBadDate
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, errBadDate
}

func dateFromParts(parts []string) (Date, bool) {
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, false
		}
		nums[i] = n
	}

	var day, month, year int
	switch {
	case nums[0] > 1000:
		year, month, day = nums[0], nums[1], nums[2]
	case nums[1] > 1000:
		day, year, month = nums[0], nums[1], nums[2]
	case nums[2] > 1000:
		day, month, year = nums[0], nums[1], nums[2]
	default:
		day, month = nums[0], nums[1]
		yearText := parts[2]
		if len(yearText) == 2 {
			yearText = "20" + yearText
		}
		y, err := strconv.Atoi(yearText)
		if err != nil {
			return Date{}, false
		}
		year = y
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		// 31/02 and friends roll over; reject them
		return Date{}, false
	}
	return DateOf(t), true
}

// CleanCell removes common export artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="...") and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// CollapseSpaces trims s and replaces every run of whitespace with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isEmptyRow(row []Cell) bool {
	for _, c := range row {
		if c.IsTime() || strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}
