package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Error string `json:"error"`
}

// rejection is a deferred error response, used by the method and body
// guards so handlers can bail out with one line.
type rejection struct {
	status  int
	message string
	allow   string
}

func (rej *rejection) write(w http.ResponseWriter) {
	if rej.allow != "" {
		w.Header().Set("Allow", rej.allow)
	}
	respondJSON(w, rej.status, errorBody{Error: rej.message})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondRaw writes a pre-encoded JSON payload, used for cached
// report responses.
func respondRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

func badRequest(message string) *rejection {
	return &rejection{status: http.StatusBadRequest, message: message}
}

func unprocessable(message string) *rejection {
	return &rejection{status: http.StatusUnprocessableEntity, message: message}
}

func methodNotAllowed(allow string) *rejection {
	return &rejection{
		status:  http.StatusMethodNotAllowed,
		message: "method not allowed",
		allow:   allow,
	}
}
