package http

import (
	"net/http"

	"bilancio/internal/core"
)

// transactionResponse carries a mutated transaction plus an optional
// warning when the backing store could not persist the change.
type transactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Warning     string           `json:"warning,omitempty"`
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Warning      string             `json:"warning,omitempty"`
}

type deleteResponse struct {
	Deleted bool   `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed("GET, POST").write(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	items := s.transactions.List()
	if items == nil {
		items = []core.Transaction{}
	}
	respondJSON(w, http.StatusOK, transactionListResponse{
		Transactions: items,
		Warning:      warningFrom(s.transactions.Err()),
	})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if reject := decodeJSON(r, &req); reject != nil {
		reject.write(w)
		return
	}
	draft, reject := req.toDraft()
	if reject != nil {
		reject.write(w)
		return
	}

	t, err := s.transactions.Add(r.Context(), draft)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.invalidateReports()

	respondJSON(w, http.StatusCreated, transactionResponse{
		Transaction: t,
		Warning:     warningFrom(s.transactions.Err()),
	})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, reject := pathID(r, "/api/transactions/")
	if reject != nil {
		reject.write(w)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed("PATCH, DELETE").write(w)
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var req transactionPatchRequest
	if reject := decodeJSON(r, &req); reject != nil {
		reject.write(w)
		return
	}
	patch, reject := req.toPatch()
	if reject != nil {
		reject.write(w)
		return
	}

	t, err := s.transactions.Update(r.Context(), id, patch)
	if err == core.ErrNotFound {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.invalidateReports()

	respondJSON(w, http.StatusOK, transactionResponse{
		Transaction: t,
		Warning:     warningFrom(s.transactions.Err()),
	})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	deleted := s.transactions.Remove(r.Context(), id)
	if deleted {
		s.invalidateReports()
	}
	respondJSON(w, http.StatusOK, deleteResponse{
		Deleted: deleted,
		Warning: warningFrom(s.transactions.Err()),
	})
}

func (s *Server) handleTransactionStats(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	respondJSON(w, http.StatusOK, s.transactions.Statistics())
}
