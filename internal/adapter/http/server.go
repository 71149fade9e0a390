// Package adapthttp serves the operational endpoints of the process:
// liveness, readiness and Prometheus metrics.
package adapthttp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ReadyFunc reports whether the backing services are reachable.
type ReadyFunc func(ctx context.Context) error

// Server is the driving HTTP adapter for operational endpoints.
type Server struct {
	ready   ReadyFunc
	metrics http.Handler
	log     *zap.Logger
}

// New creates a Server. metrics may be nil to disable /metrics.
func New(ready ReadyFunc, metrics http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{ready: ready, metrics: metrics, log: log}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(withNoCache)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			// The cause can carry driver detail, so it only goes to the log.
			s.log.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
