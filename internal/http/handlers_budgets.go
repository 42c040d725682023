package http

import (
	"net/http"

	"bilancio/internal/core"
)

type budgetResponse struct {
	Budget  core.Budget `json:"budget"`
	Warning string      `json:"warning,omitempty"`
}

type budgetListResponse struct {
	Month   core.MonthKey `json:"month"`
	Budgets []core.Budget `json:"budgets"`
	Warning string        `json:"warning,omitempty"`
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBudgets(w, r)
	case http.MethodPut:
		s.upsertBudget(w, r)
	default:
		methodNotAllowed("GET, PUT").write(w)
	}
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	month, reject := monthFromQuery(r)
	if reject != nil {
		reject.write(w)
		return
	}
	items := s.budgets.ListForMonth(month)
	if items == nil {
		items = []core.Budget{}
	}
	respondJSON(w, http.StatusOK, budgetListResponse{
		Month:   month,
		Budgets: items,
		Warning: warningFrom(s.budgets.Err()),
	})
}

func (s *Server) upsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if reject := decodeJSON(r, &req); reject != nil {
		reject.write(w)
		return
	}
	month, category, amount, reject := req.toUpsert()
	if reject != nil {
		reject.write(w)
		return
	}

	b, err := s.budgets.Upsert(r.Context(), month, category, amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.invalidateBudgetReports()

	respondJSON(w, http.StatusOK, budgetResponse{
		Budget:  b,
		Warning: warningFrom(s.budgets.Err()),
	})
}

func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodDelete); reject != nil {
		reject.write(w)
		return
	}
	id, reject := pathID(r, "/api/budgets/")
	if reject != nil {
		reject.write(w)
		return
	}

	deleted := s.budgets.Remove(r.Context(), id)
	if deleted {
		s.invalidateBudgetReports()
	}
	respondJSON(w, http.StatusOK, deleteResponse{
		Deleted: deleted,
		Warning: warningFrom(s.budgets.Err()),
	})
}

func (s *Server) handleBudgetMonths(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	months := s.budgets.Months()
	if months == nil {
		months = []core.MonthKey{}
	}
	respondJSON(w, http.StatusOK, map[string][]core.MonthKey{"months": months})
}
