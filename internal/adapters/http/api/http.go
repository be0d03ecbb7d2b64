// Package api serves the monitoring endpoints of a running decoration:
// liveness, run counters and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/minintup/internal/app"
)

// StatsProvider exposes the counters of the current run.
type StatsProvider interface {
	Stats() app.Summary
}

// Server wires the monitoring HTTP routes.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(statsProvider StatsProvider, metricsHandler http.Handler) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		metricsHandler: metricsHandler,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
