package http

import (
	"encoding/json"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/report"
)

// insightView pairs the structured insight with its rendered text so
// API clients can show the message without reimplementing formatting.
type insightView struct {
	report.Insight
	Text string `json:"text"`
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	s.serveCachedReport(w, "monthly", func() (any, error) {
		totals := report.GroupByMonth(s.transactions.List())
		if totals == nil {
			totals = []core.MonthlyTotal{}
		}
		return map[string][]core.MonthlyTotal{"months": totals}, nil
	})
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	month, reject := monthFromQuery(r)
	if reject != nil {
		reject.write(w)
		return
	}
	s.serveCachedReport(w, "categories:"+string(month), func() (any, error) {
		totals := report.MonthlyCategoryExpenses(s.transactions.List(), month)
		if totals == nil {
			totals = []core.CategoryTotal{}
		}
		return map[string]any{"month": month, "categories": totals}, nil
	})
}

func (s *Server) handleComparisonReport(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	month, reject := monthFromQuery(r)
	if reject != nil {
		reject.write(w)
		return
	}
	s.serveCachedReport(w, "comparison:"+string(month), func() (any, error) {
		rows := report.CompareBudgetToActual(s.transactions.List(), s.budgets.List(), month)
		if rows == nil {
			rows = []core.BudgetComparison{}
		}
		return map[string]any{"month": month, "comparison": rows}, nil
	})
}

func (s *Server) handleInsightsReport(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	month, reject := monthFromQuery(r)
	if reject != nil {
		reject.write(w)
		return
	}
	s.serveCachedReport(w, "insights:"+string(month), func() (any, error) {
		transactions := s.transactions.List()
		comparison := report.CompareBudgetToActual(transactions, s.budgets.List(), month)
		stats := core.Summarize(report.TransactionsInMonth(transactions, month))

		views := []insightView{}
		for _, ins := range report.GenerateInsights(comparison, stats) {
			views = append(views, insightView{Insight: ins, Text: ins.Text()})
		}
		return map[string]any{"month": month, "insights": views}, nil
	})
}

// serveCachedReport answers from the report cache when possible and
// otherwise computes, encodes and stores the payload under key.
func (s *Server) serveCachedReport(w http.ResponseWriter, key string, compute func() (any, error)) {
	if cached, ok := s.reportCache.Get(key); ok {
		respondRaw(w, http.StatusOK, cached)
		return
	}

	payload, err := compute()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode report")
		return
	}
	encoded = append(encoded, '\n')

	s.reportCache.Set(key, encoded)
	respondRaw(w, http.StatusOK, encoded)
}
