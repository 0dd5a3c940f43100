// Package metrics defines the Prometheus instrumentation for the
// validation pipeline: selection decisions, document evaluations,
// fixture runs, and cache behavior.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the pipeline records into. Construct
// one per process and register it on a prometheus.Registerer; tests
// construct their own against a fresh registry.
type Metrics struct {
	// SelectionDecisions counts selection outcomes by decision kind and
	// confidence band.
	SelectionDecisions *prometheus.CounterVec

	// SelectionDuration observes selection call latency.
	SelectionDuration prometheus.Histogram

	// EvaluationOutcomes counts document evaluations by outcome and
	// documentation quality.
	EvaluationOutcomes *prometheus.CounterVec

	// EvaluationDuration observes rules-engine evaluation latency.
	EvaluationDuration prometheus.Histogram

	// FixtureRuns counts fixture pack runs by overall status.
	FixtureRuns *prometheus.CounterVec

	// FixtureCaseResults counts fixture cases by result status.
	FixtureCaseResults *prometheus.CounterVec

	// CacheOperations counts cache hits, misses, and evictions.
	CacheOperations *prometheus.CounterVec

	// CacheEntries tracks the current cache entry count.
	CacheEntries prometheus.Gauge

	// RegistryTemplates tracks registered templates by status.
	RegistryTemplates *prometheus.GaugeVec
}

// New creates the metric collectors under the given namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "saturn"
	}

	return &Metrics{
		SelectionDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "selector",
				Name:      "decisions_total",
				Help:      "Selection decisions by kind and confidence band.",
			},
			[]string{"decision", "confidence"},
		),
		SelectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "selector",
				Name:      "duration_seconds",
				Help:      "Template selection latency.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		EvaluationOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rules",
				Name:      "evaluations_total",
				Help:      "Document evaluations by outcome and documentation quality.",
			},
			[]string{"outcome", "quality"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rules",
				Name:      "duration_seconds",
				Help:      "Rules engine evaluation latency.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		FixtureRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fixtures",
				Name:      "runs_total",
				Help:      "Fixture pack runs by overall status.",
			},
			[]string{"status"},
		),
		FixtureCaseResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fixtures",
				Name:      "cases_total",
				Help:      "Fixture cases by result status.",
			},
			[]string{"status"},
		),
		CacheOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "operations_total",
				Help:      "Cache operations by type (hit, miss, eviction).",
			},
			[]string{"operation"},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Current cache entry count.",
			},
		),
		RegistryTemplates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "templates",
				Help:      "Registered templates by lifecycle status.",
			},
			[]string{"status"},
		),
	}
}

// ObserveSelection records one selection decision. All observe methods
// are nil-safe so components can carry an optional *Metrics without
// guarding every call site.
func (m *Metrics) ObserveSelection(decision, confidence string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SelectionDecisions.WithLabelValues(decision, confidence).Inc()
	m.SelectionDuration.Observe(duration.Seconds())
}

// ObserveEvaluation records one document evaluation.
func (m *Metrics) ObserveEvaluation(outcome, quality string, duration time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationOutcomes.WithLabelValues(outcome, quality).Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
}

// ObserveFixtureRun records one completed fixture pack run.
func (m *Metrics) ObserveFixtureRun(status string) {
	if m == nil {
		return
	}
	m.FixtureRuns.WithLabelValues(status).Inc()
}

// ObserveFixtureCase records one fixture case result.
func (m *Metrics) ObserveFixtureCase(status string) {
	if m == nil {
		return
	}
	m.FixtureCaseResults.WithLabelValues(status).Inc()
}

// ObserveCacheOperation records a cache hit, miss, eviction, or expiry.
func (m *Metrics) ObserveCacheOperation(operation string) {
	if m == nil {
		return
	}
	m.CacheOperations.WithLabelValues(operation).Inc()
}

// SetCacheEntries updates the cache entry-count gauge.
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

// Register registers every collector on the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.SelectionDecisions,
		m.SelectionDuration,
		m.EvaluationOutcomes,
		m.EvaluationDuration,
		m.FixtureRuns,
		m.FixtureCaseResults,
		m.CacheOperations,
		m.CacheEntries,
		m.RegistryTemplates,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
