// Package metrics exposes Prometheus collectors for the external call layer:
// fetch attempts and retries against the task API, generation attempts per
// model tier, outcome kinds, and the daily-quota flag.
//
// Collectors are registered on a caller-supplied registry so tests and
// multiple engine instances never collide on the global default registry.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "task_extractor"

// Metrics groups every collector the call layer updates.
type Metrics struct {
	fetchRequests  *prometheus.CounterVec
	fetchRetries   prometheus.Counter
	fetchLatency   *prometheus.HistogramVec
	genAttempts    *prometheus.CounterVec
	genOutcomes    *prometheus.CounterVec
	quotaExhausted prometheus.Gauge
	recordsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_requests_total",
				Help:      "Logical task API calls by final result",
			},
			[]string{"result"},
		),
		fetchRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_retries_total",
				Help:      "Task API attempts retried after a transient fault",
			},
		),
		fetchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_attempt_duration_seconds",
				Help:      "Latency of individual task API attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		genAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_attempts_total",
				Help:      "Generation provider calls by model tier and result",
			},
			[]string{"model", "result"},
		),
		genOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_outcomes_total",
				Help:      "Generation requests by outcome kind",
			},
			[]string{"kind"},
		),
		quotaExhausted: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "generation_daily_quota_exhausted",
				Help:      "1 once the provider reported daily quota exhaustion in this run",
			},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Extracted records by disposition",
			},
			[]string{"disposition"},
		),
	}

	collectors := []prometheus.Collector{
		m.fetchRequests, m.fetchRetries, m.fetchLatency,
		m.genAttempts, m.genOutcomes, m.quotaExhausted, m.recordsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// FetchAttempt observes one HTTP attempt. status is the HTTP status text or
// "network" when no response arrived.
func (m *Metrics) FetchAttempt(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
}

// FetchRetry counts a retry scheduled after a transient fault.
func (m *Metrics) FetchRetry() {
	if m == nil {
		return
	}
	m.fetchRetries.Inc()
}

// FetchResult counts a finished logical call.
func (m *Metrics) FetchResult(result string) {
	if m == nil {
		return
	}
	m.fetchRequests.WithLabelValues(result).Inc()
}

// GenerationAttempt counts one provider call on a tier.
func (m *Metrics) GenerationAttempt(model, result string) {
	if m == nil {
		return
	}
	m.genAttempts.WithLabelValues(model, result).Inc()
}

// GenerationOutcome counts a finished generation request.
func (m *Metrics) GenerationOutcome(kind string) {
	if m == nil {
		return
	}
	m.genOutcomes.WithLabelValues(kind).Inc()
}

// QuotaExhausted raises the daily-quota gauge.
func (m *Metrics) QuotaExhausted() {
	if m == nil {
		return
	}
	m.quotaExhausted.Set(1)
}

// Record counts an extracted record by disposition (exported, skipped, ...).
func (m *Metrics) Record(disposition string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(disposition).Inc()
}
