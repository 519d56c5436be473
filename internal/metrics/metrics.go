// Package metrics exposes Prometheus instrumentation for engine calls, the
// song resolver and bulk imports. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracklens"

// Engine call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder owns a private registry so tests can build as many as they need.
type Recorder struct {
	registry       *prometheus.Registry
	engineRequests *prometheus.CounterVec
	engineLatency  *prometheus.HistogramVec
	resolverStages *prometheus.CounterVec
	importRecords  *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		engineRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_requests_total",
			Help:      "Search engine requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		engineLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine round-trip latency by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"operation"}),
		resolverStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_outcomes_total",
			Help:      "Smart song searches by the stage that produced the result.",
		}, []string{"stage"}),
		importRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_records_total",
			Help:      "Records processed by bulk imports by outcome.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.engineRequests,
		r.engineLatency,
		r.resolverStages,
		r.importRecords,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveEngine records one engine round trip.
func (r *Recorder) ObserveEngine(op, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.engineRequests.WithLabelValues(op, outcome).Inc()
	r.engineLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ResolverOutcome records which resolver stage answered a smart search.
func (r *Recorder) ResolverOutcome(stage string) {
	if r == nil {
		return
	}
	r.resolverStages.WithLabelValues(stage).Inc()
}

// ImportRecords adds n records with the given outcome.
func (r *Recorder) ImportRecords(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.importRecords.WithLabelValues(outcome).Add(float64(n))
}
