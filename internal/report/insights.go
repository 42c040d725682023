package report

import (
	"fmt"
	"sort"

	"bilancio/internal/core"
)

type (
	// Severity classifies how an insight should be presented.
	Severity string

	// InsightKind names the observation an insight carries.
	InsightKind string
)

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

const (
	// InsightBudgetUsage reports overall budget utilization for the month.
	InsightBudgetUsage InsightKind = "budget_usage"
	// InsightOverBudget flags the category with the largest overage.
	InsightOverBudget InsightKind = "over_budget"
	// InsightUnderBudget highlights the category with the largest savings.
	InsightUnderBudget InsightKind = "under_budget"
	// InsightTopCategory reports the category with the highest spending.
	InsightTopCategory InsightKind = "top_category"
	// InsightUnusedBudgets counts budgeted categories with no spending.
	InsightUnusedBudgets InsightKind = "unused_budgets"
)

// Insight is a structured observation about budget performance.
// Rendering to text is a separate concern (see Text) so callers can
// format or localize the parameters themselves.
type Insight struct {
	Kind     InsightKind   `json:"kind"`
	Severity Severity      `json:"severity"`
	Category core.Category `json:"category,omitempty"`
	Amount   core.Money    `json:"amount"`
	Percent  float64       `json:"percent"`
	Count    int           `json:"count,omitempty"`
}

// GenerateInsights synthesizes observations from a budget comparison
// and the month's statistics. Each rule is independently optional and
// the output order is fixed: overall utilization, worst over-budget
// category, best under-budget category, top spending category, unused
// budget count. Percentages are never emitted against a zero
// denominator; the rule is skipped instead.
func GenerateInsights(comparison []core.BudgetComparison, stats core.Statistics) []Insight {
	var out []Insight

	var totalBudgeted, totalActual core.Money
	for _, row := range comparison {
		totalBudgeted = totalBudgeted.Add(row.Budgeted)
		totalActual = totalActual.Add(row.Actual)
	}

	// Overall utilization.
	if totalBudgeted.Cents > 0 {
		severity := SeveritySuccess
		if totalActual.Cents > totalBudgeted.Cents {
			severity = SeverityWarning
		}
		out = append(out, Insight{
			Kind:     InsightBudgetUsage,
			Severity: severity,
			Amount:   totalActual,
			Percent:  percentOf(totalActual, totalBudgeted),
		})
	}

	// Worst over-budget category: largest absolute overage wins,
	// earlier row wins ties (stable sort).
	var over []core.BudgetComparison
	for _, row := range comparison {
		if row.Budgeted.Cents > 0 && row.Actual.Cents > row.Budgeted.Cents {
			over = append(over, row)
		}
	}
	if len(over) > 0 {
		sort.SliceStable(over, func(i, j int) bool {
			return overage(over[i]).Cents > overage(over[j]).Cents
		})
		worst := over[0]
		out = append(out, Insight{
			Kind:     InsightOverBudget,
			Severity: SeverityWarning,
			Category: worst.Category,
			Amount:   overage(worst),
			Percent:  percentOf(overage(worst), worst.Budgeted),
		})
	}

	// Best under-budget category: largest absolute savings.
	var under []core.BudgetComparison
	for _, row := range comparison {
		if row.Budgeted.Cents > 0 && row.Actual.Cents < row.Budgeted.Cents {
			under = append(under, row)
		}
	}
	if len(under) > 0 {
		sort.SliceStable(under, func(i, j int) bool {
			return under[i].Difference.Cents > under[j].Difference.Cents
		})
		best := under[0]
		out = append(out, Insight{
			Kind:     InsightUnderBudget,
			Severity: SeveritySuccess,
			Category: best.Category,
			Amount:   best.Difference,
			Percent:  percentOf(best.Difference, best.Budgeted),
		})
	}

	// Top spending category overall.
	var top *core.BudgetComparison
	for i := range comparison {
		if comparison[i].Actual.Cents <= 0 {
			continue
		}
		if top == nil || comparison[i].Actual.Cents > top.Actual.Cents {
			top = &comparison[i]
		}
	}
	if top != nil {
		denominator := stats.Expenses
		if denominator.Cents <= 0 {
			denominator = totalActual
		}
		if denominator.Cents > 0 {
			out = append(out, Insight{
				Kind:     InsightTopCategory,
				Severity: SeverityInfo,
				Category: top.Category,
				Amount:   top.Actual,
				Percent:  percentOf(top.Actual, denominator),
			})
		}
	}

	// Unused budgets.
	unused := 0
	for _, row := range comparison {
		if row.Budgeted.Cents > 0 && row.Actual.Cents == 0 {
			unused++
		}
	}
	if unused > 0 {
		out = append(out, Insight{
			Kind:     InsightUnusedBudgets,
			Severity: SeverityInfo,
			Count:    unused,
		})
	}

	return out
}

// Text renders the insight as a display string.
func (i Insight) Text() string {
	switch i.Kind {
	case InsightBudgetUsage:
		if i.Severity == SeverityWarning {
			return fmt.Sprintf("You have spent %s of this month's budget (%s)", formatPercent(i.Percent), i.Amount)
		}
		return fmt.Sprintf("You have used %s of this month's budget (%s)", formatPercent(i.Percent), i.Amount)
	case InsightOverBudget:
		return fmt.Sprintf("%s is over budget by %s (%s over)", i.Category, i.Amount, formatPercent(i.Percent))
	case InsightUnderBudget:
		return fmt.Sprintf("%s is under budget by %s (%s saved)", i.Category, i.Amount, formatPercent(i.Percent))
	case InsightTopCategory:
		return fmt.Sprintf("%s is your top spending category at %s (%s of spending)", i.Category, i.Amount, formatPercent(i.Percent))
	case InsightUnusedBudgets:
		if i.Count == 1 {
			return "1 budgeted category has no spending this month"
		}
		return fmt.Sprintf("%d budgeted categories have no spending this month", i.Count)
	default:
		return ""
	}
}

func overage(row core.BudgetComparison) core.Money {
	return row.Actual.Sub(row.Budgeted)
}

// percentOf returns part/whole as a percentage. Callers guard against
// a zero whole.
func percentOf(part, whole core.Money) float64 {
	return float64(part.Cents) / float64(whole.Cents) * 100
}

// formatPercent drops the fraction when it is a whole number, so the
// common cases read "20%" rather than "20.0%".
func formatPercent(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d%%", int64(p))
	}
	return fmt.Sprintf("%.1f%%", p)
}
