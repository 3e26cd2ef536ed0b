// Package api declares HTTP routes served by the exporter.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/numerai-exporter/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusProvider reports the state of the latest collection pass.
type StatusProvider interface {
	Status() types.TickStatus
}

// Server wires HTTP routes for metrics and health.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler http.Handler
}

// NewServer creates a server exposing gatherer on /metrics.
func NewServer(status StatusProvider, gatherer prometheus.Gatherer) *Server {
	return &Server{
		healthHandler: NewHealthHandler(status),
		metricsHandler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/metrics", MetricsMiddleware(s.metricsHandler.ServeHTTP, "metrics"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
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
