package http

import (
	"net"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
)

// clientIP extracts the originating client address, preferring the
// first X-Forwarded-For hop when a proxy sits in front.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requireMethod returns a rejection unless the request uses one of
// the given methods.
func requireMethod(r *http.Request, methods ...string) *rejection {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return methodNotAllowed(strings.Join(methods, ", "))
}

// monthFromQuery reads the month query parameter, defaulting to the
// current calendar month when absent.
func monthFromQuery(r *http.Request) (core.MonthKey, *rejection) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return core.MonthKeyOf(time.Now()), nil
	}
	month, err := core.ParseMonthKey(raw)
	if err != nil {
		return "", badRequest("invalid month: expected YYYY-MM")
	}
	return month, nil
}

// pathID extracts the trailing path segment after prefix, e.g. the
// transaction id in /api/transactions/{id}.
func pathID(r *http.Request, prefix string) (string, *rejection) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", badRequest("missing or malformed id")
	}
	return id, nil
}

// warningFrom surfaces a store's transient storage error, if any, as
// a response field.
func warningFrom(err error) string {
	if err == nil {
		return ""
	}
	return "changes may not survive a restart: " + err.Error()
}
