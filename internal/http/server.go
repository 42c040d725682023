// Package http exposes the stores and the report engine as a JSON API.
package http

import (
	"net/http"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/store"
)

// Options tunes server behavior. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
}

// Server wires the stores, the report cache and the middleware chain
// into one http.Server.
type Server struct {
	http.Server

	transactions *store.TransactionStore
	budgets      *store.BudgetStore

	// Report payloads are cheap to recompute but requested on every
	// dashboard refresh; cache them per month and drop everything on
	// any mutation.
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
}

// NewServer builds the server with its full middleware chain:
// security headers, rate limiting, request tracing, then routing.
func NewServer(addr string, transactions *store.TransactionStore, budgets *store.BudgetStore, opts Options) *Server {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 120
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	s := &Server{
		transactions: transactions,
		budgets:      budgets,
		reportCache:  cache.NewLRUCache[[]byte](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
	}
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = mux
	handler = trace.Middleware(clientIP)(handler)
	handler = s.rateLimiter.Middleware(clientIP, nil)(handler)
	handler = security.Middleware(security.DefaultHeadersConfig())(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/stats", s.handleTransactionStats)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)

	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/budgets/months", s.handleBudgetMonths)
	mux.HandleFunc("/api/budgets/", s.handleBudgetByID)

	mux.HandleFunc("/api/reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("/api/reports/categories", s.handleCategoryReport)
	mux.HandleFunc("/api/reports/comparison", s.handleComparisonReport)
	mux.HandleFunc("/api/reports/insights", s.handleInsightsReport)
}

// invalidateReports drops all cached report payloads after a
// transaction mutation; every report derives from the transaction set.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

// invalidateBudgetReports drops only the budget-derived payloads. The
// monthly and category reports read transactions alone and stay valid
// across budget mutations.
func (s *Server) invalidateBudgetReports() {
	s.reportCache.DeletePrefix("comparison:")
	s.reportCache.DeletePrefix("insights:")
}

// Stop releases server-side background resources. The embedded
// http.Server is shut down separately by the caller.
func (s *Server) Stop() {
	s.rateLimiter.Stop()
	s.cacheManager.Stop()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if reject := requireMethod(r, http.MethodGet); reject != nil {
		reject.write(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
