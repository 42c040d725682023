package core

// Statistics summarizes a set of transactions. Income is the sum of
// positive amounts, Expenses the sum of absolute negative amounts,
// and Balance = Income - Expenses.
type Statistics struct {
	Count    int   `json:"count"`
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Balance  Money `json:"balance"`
}

// MonthlyTotal is the signed sum of transaction amounts for one month.
type MonthlyTotal struct {
	Month MonthKey `json:"month"`
	Label string   `json:"label"`
	Total Money    `json:"total"`
}

// CategoryTotal is the absolute expense total for one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    Money    `json:"total"`
}

// BudgetComparison lines up budgeted against actual spending for one
// category within one month. Difference = Budgeted - Actual, so a
// negative difference means the category is over budget.
type BudgetComparison struct {
	Category   Category `json:"category"`
	Budgeted   Money    `json:"budgeted"`
	Actual     Money    `json:"actual"`
	Difference Money    `json:"difference"`
}

// Summarize computes Statistics over a snapshot of transactions.
func Summarize(transactions []Transaction) Statistics {
	stats := Statistics{Count: len(transactions)}
	for _, t := range transactions {
		if t.Amount.IsIncome() {
			stats.Income = stats.Income.Add(t.Amount)
		} else {
			stats.Expenses = stats.Expenses.Add(t.Amount.Abs())
		}
	}
	stats.Balance = stats.Income.Sub(stats.Expenses)
	return stats
}
