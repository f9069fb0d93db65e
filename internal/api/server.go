// Package api provides the drip HTTP server.
// It exposes the account REST API, the public plan catalog, and the
// Prometheus metrics endpoint.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drip-labs/drip/internal/domain"
	"github.com/drip-labs/drip/internal/infra/accounts"
)

// Version is the API version reported at /api/version.
const Version = "0.1.0"

// Server is the drip HTTP API server.
type Server struct {
	accounts       *accounts.Manager
	metricsEnabled bool

	// now is injected for tests; production uses UTC wall clock.
	now func() time.Time
}

// NewServer creates a new API server over the account manager.
func NewServer(mgr *accounts.Manager) *Server {
	return &Server{
		accounts: mgr,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	r.Get("/api/plans", s.handlePlans)
	r.Get("/api/accounts", s.handleListAccounts)

	r.Route("/api/accounts/{accountID}", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/history", s.handleHistory)

		r.Get("/sources", s.handleListSources)
		r.Post("/sources", s.handleAddSource)
		r.Delete("/sources/{sourceID}", s.handleRemoveSource)

		r.Post("/collect", s.handleCollectAll)
		r.Post("/collect/{sourceID}", s.handleCollect)

		r.Post("/deposit", s.handleDeposit)
		r.Post("/spend", s.handleSpend)
		r.Post("/upgrade", s.handleUpgrade)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handlePlans returns the public plan catalog.
// GET /api/plans
func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	plans := domain.PlanComparison()
	out := make([]map[string]interface{}, 0, len(plans))
	for _, p := range plans {
		out = append(out, map[string]interface{}{
			"tier":           p.Tier.String(),
			"cost_per_month": p.CostPerMonth,
			"multiplier":     p.Multiplier,
			"max_sources":    p.MaxSources,
			"features": map[string]bool{
				"extra_source_slots": p.Features.ExtraSourceSlots,
				"reduced_cooldowns":  p.Features.ReducedCooldowns,
				"auto_collect":       p.Features.AutoCollect,
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": out})
}
