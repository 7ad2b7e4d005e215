package core

import "github.com/shopspring/decimal"

// dropReason explains why a row produced no candidate.
type dropReason int

const (
	keepRow dropReason = iota
	dropBadDate
	dropBadAmount
	dropZeroAmount
	dropEmpty
)

// amountReading is the outcome of reading a row's amount cells.
type amountReading struct {
	Amount    decimal.Decimal // magnitude
	Direction Direction
	BothSides bool // outflow and inflow were both non-zero
}

// amountSource derives magnitude and direction from a row. There is one
// implementation per AmountMode.
type amountSource interface {
	read(row []Cell) (amountReading, dropReason)
}

// newAmountSource returns the handler for the mapping's mode.
func newAmountSource(m ColumnMapping) amountSource {
	switch m.Mode() {
	case AmountInverted:
		return invertedAmount{col: m.Amount}
	case AmountSplit:
		return splitAmount{outflow: m.Outflow, inflow: m.Inflow}
	default:
		return standardAmount{col: m.Amount}
	}
}

// standardAmount: negative is an expense, non-negative is income.
type standardAmount struct{ col int }

func (s standardAmount) read(row []Cell) (amountReading, dropReason) {
	v, reason := readAmountCell(row, s.col)
	if reason != keepRow {
		return amountReading{}, reason
	}
	if v.IsNegative() {
		return amountReading{Amount: v.Abs(), Direction: DirectionExpense}, keepRow
	}
	return amountReading{Amount: v, Direction: DirectionIncome}, keepRow
}

// invertedAmount: positive is an expense, non-positive is income.
type invertedAmount struct{ col int }

func (s invertedAmount) read(row []Cell) (amountReading, dropReason) {
	v, reason := readAmountCell(row, s.col)
	if reason != keepRow {
		return amountReading{}, reason
	}
	if v.IsPositive() {
		return amountReading{Amount: v, Direction: DirectionExpense}, keepRow
	}
	return amountReading{Amount: v.Abs(), Direction: DirectionIncome}, keepRow
}

// splitAmount reads separate outflow and inflow columns. When both hold a
// non-zero value the outflow wins and the reading is flagged.
type splitAmount struct{ outflow, inflow int }

func (s splitAmount) read(row []Cell) (amountReading, dropReason) {
	out, outOK := optionalAmount(row, s.outflow)
	in, inOK := optionalAmount(row, s.inflow)

	switch {
	case outOK && !out.IsZero():
		return amountReading{Amount: out.Abs(), Direction: DirectionExpense, BothSides: inOK && !in.IsZero()}, keepRow
	case inOK && !in.IsZero():
		return amountReading{Amount: in.Abs(), Direction: DirectionIncome}, keepRow
	default:
		return amountReading{}, dropZeroAmount
	}
}

func readAmountCell(row []Cell, col int) (decimal.Decimal, dropReason) {
	if col < 0 || col >= len(row) {
		return decimal.Zero, dropBadAmount
	}
	v, err := ParseAmount(row[col].Text)
	switch {
	case err == errEmptyValue:
		return decimal.Zero, dropZeroAmount
	case err != nil:
		return decimal.Zero, dropBadAmount
	case v.IsZero():
		return decimal.Zero, dropZeroAmount
	}
	return v, keepRow
}

// optionalAmount treats blank and unparseable cells as absent.
func optionalAmount(row []Cell, col int) (decimal.Decimal, bool) {
	if col < 0 || col >= len(row) {
		return decimal.Zero, false
	}
	v, err := ParseAmount(row[col].Text)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
