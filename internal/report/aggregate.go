// Package report derives display data from store snapshots: monthly
// groupings, category totals, budget-to-actual comparisons and
// insights. Every function here is pure; nothing mutates its inputs
// and identical inputs always produce identical outputs.
package report

import (
	"sort"

	"bilancio/internal/core"
)

// GroupByMonth buckets transactions by the calendar month of their
// date and sums the signed amounts per bucket. Entries with a missing
// or unparseable date are skipped. Buckets come back sorted ascending
// by month key, each carrying a human-readable label.
func GroupByMonth(transactions []core.Transaction) []core.MonthlyTotal {
	totals := make(map[core.MonthKey]core.Money)
	for _, t := range transactions {
		if t.Date.IsZero() {
			continue
		}
		key := t.Date.MonthKey()
		totals[key] = totals[key].Add(t.Amount)
	}

	out := make([]core.MonthlyTotal, 0, len(totals))
	for key, total := range totals {
		out = append(out, core.MonthlyTotal{
			Month: key,
			Label: key.Label(),
			Total: total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CategoryTotals sums the absolute value of expense transactions per
// category. Income entries are ignored. An empty category is coerced
// to Other at this stage so uncategorized spending still shows up.
// The result is sorted by descending total for stable output.
func CategoryTotals(transactions []core.Transaction) []core.CategoryTotal {
	totals := make(map[core.Category]core.Money)
	for _, t := range transactions {
		if !t.Amount.IsExpense() {
			continue
		}
		cat := t.Category.OrOther()
		totals[cat] = totals[cat].Add(t.Amount.Abs())
	}

	out := make([]core.CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, core.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TransactionsInMonth filters transactions to the inclusive range from
// the first to the last calendar day of month. An invalid month key
// yields an empty result.
func TransactionsInMonth(transactions []core.Transaction, month core.MonthKey) []core.Transaction {
	first, last, err := month.Bounds()
	if err != nil {
		return nil
	}
	var out []core.Transaction
	for _, t := range transactions {
		if t.Date.IsZero() {
			continue
		}
		if t.Date.Before(first.Time) || t.Date.After(last.Time) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MonthlyCategoryExpenses is CategoryTotals restricted to one month.
func MonthlyCategoryExpenses(transactions []core.Transaction, month core.MonthKey) []core.CategoryTotal {
	return CategoryTotals(TransactionsInMonth(transactions, month))
}

// CompareBudgetToActual lines up budgeted against actual spending for
// month. The emitted categories are the union of categories with a
// budget entry that month and categories with actual spending that
// month: spending without a budget appears with Budgeted=0, a budget
// without spending appears with Actual=0. Rows are sorted by category
// name.
func CompareBudgetToActual(transactions []core.Transaction, budgets []core.Budget, month core.MonthKey) []core.BudgetComparison {
	actuals := make(map[core.Category]core.Money)
	for _, ct := range MonthlyCategoryExpenses(transactions, month) {
		actuals[ct.Category] = ct.Total
	}

	budgeted := make(map[core.Category]core.Money)
	for _, b := range budgets {
		if b.Month != month {
			continue
		}
		budgeted[b.Category.OrOther()] = b.Amount
	}

	seen := make(map[core.Category]bool)
	var out []core.BudgetComparison
	add := func(cat core.Category) {
		if seen[cat] {
			return
		}
		seen[cat] = true
		row := core.BudgetComparison{
			Category: cat,
			Budgeted: budgeted[cat],
			Actual:   actuals[cat],
		}
		row.Difference = row.Budgeted.Sub(row.Actual)
		out = append(out, row)
	}
	for cat := range budgeted {
		add(cat)
	}
	for cat := range actuals {
		add(cat)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
