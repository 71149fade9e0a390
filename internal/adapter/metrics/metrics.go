// Package metrics holds the Prometheus collectors of the store layer.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"bikemarket/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store records one observation per repository operation.
type Store struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewStore creates the store collectors and registers them on reg.
func NewStore(reg prometheus.Registerer) *Store {
	s := &Store{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bikemarket",
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Total number of store operations by outcome.",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bikemarket",
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Duration of store operations.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(s.ops, s.duration)
	}
	return s
}

// Observe records the outcome and duration of op.
func (s *Store) Observe(op string, start time.Time, err error) {
	if s == nil {
		return
	}
	s.ops.WithLabelValues(op, Outcome(err)).Inc()
	s.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Outcome classifies err by the domain error taxonomy.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrListingHasMessages):
		return "conflict"
	default:
		return "unavailable"
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
