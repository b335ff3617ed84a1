// Package analytics provides pure, side-effect-free queries over a sequence
// of transactions: filtering, totals, balance and category breakdowns. The
// caller decides whether the input is the full ledger or an already filtered
// subset; inputs are assumed pre-validated at the boundary.
package analytics

import (
	"fintracker/internal/core"
)

// FilterAll is the keyword that disables a category or type predicate.
// The empty string behaves the same way.
const FilterAll = "All"

// Query describes an independent, conjunctive set of filter predicates.
type Query struct {
	// Category is "All"/"" for no filtering, "Other" for transactions whose
	// category is not one of the predefined labels, or an exact label.
	Category string
	// Type is "All"/"" for no filtering, otherwise an exact match on
	// Income/Expense.
	Type string
	// Start and End are inclusive calendar-date bounds; nil means unbounded.
	Start *core.Date
	End   *core.Date
}

// Filter returns the transactions matching every predicate of q. The input
// is never mutated; the result is a new slice.
func Filter(ts []core.Transaction, q Query) []core.Transaction {
	out := make([]core.Transaction, 0, len(ts))
	for _, tx := range ts {
		if !matchCategory(tx, q.Category) {
			continue
		}
		if !matchType(tx, q.Type) {
			continue
		}
		if q.Start != nil && tx.Date.Before(q.Start.Time) {
			continue
		}
		if q.End != nil && tx.Date.After(q.End.Time) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matchCategory(tx core.Transaction, category string) bool {
	switch category {
	case "", FilterAll:
		return true
	case core.CategoryOther:
		return !core.IsPredefinedCategory(tx.Category)
	default:
		return tx.Category == category
	}
}

func matchType(tx core.Transaction, txType string) bool {
	if txType == "" || txType == FilterAll {
		return true
	}
	return string(tx.Type) == txType
}

// Totals sums amounts per transaction type over ts.
func Totals(ts []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range ts {
		switch tx.Type {
		case core.Income:
			t.Income.Cents += tx.Amount.Cents
		case core.Expense:
			t.Expense.Cents += tx.Amount.Cents
		}
	}
	return t
}

// Balance returns income minus expense over ts. The result may be negative.
func Balance(ts []core.Transaction) core.Money {
	t := Totals(ts)
	return core.Money{Cents: t.Net()}
}

// Breakdown groups ts by category within each type and expresses every
// category's sum as a percentage of that type's grand total. When a type's
// total is zero each of its shares is 0 rather than dividing by zero.
// Share order is first-occurrence order, not sorted.
func Breakdown(ts []core.Transaction) (income, expense []core.CategoryShare) {
	incomeSums, incomeOrder := sumByCategory(ts, core.Income)
	expenseSums, expenseOrder := sumByCategory(ts, core.Expense)
	return shares(incomeSums, incomeOrder), shares(expenseSums, expenseOrder)
}

func sumByCategory(ts []core.Transaction, txType core.TxType) (map[string]int64, []string) {
	sums := make(map[string]int64)
	var order []string
	for _, tx := range ts {
		if tx.Type != txType {
			continue
		}
		if _, seen := sums[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		sums[tx.Category] += tx.Amount.Cents
	}
	return sums, order
}

func shares(sums map[string]int64, order []string) []core.CategoryShare {
	var total int64
	for _, cents := range sums {
		total += cents
	}
	out := make([]core.CategoryShare, 0, len(order))
	for _, category := range order {
		var percent float64
		if total > 0 {
			percent = float64(sums[category]) / float64(total) * 100
		}
		out = append(out, core.CategoryShare{Category: category, Percent: percent})
	}
	return out
}
