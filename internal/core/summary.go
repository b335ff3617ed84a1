package core

// Totals holds the income and expense sums over a transaction sequence.
type Totals struct {
	Income  Money
	Expense Money
}

// Net returns income minus expense in cents. May be negative.
func (t Totals) Net() int64 {
	return t.Income.Cents - t.Expense.Cents
}

// CategoryShare is one category's percentage share within a type's total.
// Shares are kept in a slice, not a map, so that first-occurrence order is
// preserved for display.
type CategoryShare struct {
	Category string
	Percent  float64
}
