package analyzer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Pass outcomes, used as the "outcome" label.
const (
	OutcomePublished  = "published"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
	OutcomeCancelled  = "cancelled"
)

// Metrics are the engine's Prometheus collectors. A nil *Metrics records nothing.
// One Metrics value may be shared by many engines; series are labelled by language.
type Metrics struct {
	submissions *prometheus.CounterVec
	passes      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	pool        *prometheus.CounterVec
	workers     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Passing prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "textanalyzer",
			Name:      "submissions_total",
			Help:      "Content snapshots submitted for analysis.",
		}, []string{"language"}),
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "textanalyzer",
			Name:      "passes_total",
			Help:      "Analysis passes by outcome.",
		}, []string{"language", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "textanalyzer",
			Name:      "pass_duration_seconds",
			Help:      "Duration of published analysis passes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"language"}),
		pool: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "textanalyzer",
			Name:      "pool_containers_total",
			Help:      "Result container pool traffic.",
		}, []string{"language", "event"}),
		workers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "textanalyzer",
			Name:      "workers_active",
			Help:      "Engine workers currently alive.",
		}),
	}
}

func (m *Metrics) submitted(language string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(language).Inc()
}

func (m *Metrics) pass(language, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(language, outcome).Inc()
	if outcome == OutcomePublished {
		m.duration.WithLabelValues(language).Observe(d.Seconds())
	}
}

func (m *Metrics) poolDelta(language string, before, after textmodel.PoolStats) {
	if m == nil {
		return
	}
	m.pool.WithLabelValues(language, "acquired").Add(float64(after.Acquired - before.Acquired))
	m.pool.WithLabelValues(language, "reused").Add(float64(after.Reused - before.Reused))
	m.pool.WithLabelValues(language, "recycled").Add(float64(after.Recycled - before.Recycled))
}

func (m *Metrics) workerStarted() {
	if m == nil {
		return
	}
	m.workers.Inc()
}

func (m *Metrics) workerStopped() {
	if m == nil {
		return
	}
	m.workers.Dec()
}
