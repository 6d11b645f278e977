package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	Recorded        *prometheus.CounterVec
	PersistFailures prometheus.Counter
	MirrorFailures  prometheus.Counter
	PersistDuration prometheus.Histogram
}

// NewMetrics creates the publisher metrics and registers them with reg.
// A nil registerer leaves them unregistered, which suits tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Recorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_audit_records_total",
			Help: "Total number of audit records persisted, by category",
		}, []string{"category"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_audit_persist_failures_total",
			Help: "Total number of audit records the primary store failed to persist",
		}),
		MirrorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atelier_audit_mirror_failures_total",
			Help: "Total number of audit records a mirror store failed to persist",
		}),
		PersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "atelier_audit_persist_duration_seconds",
			Help:    "Latency of synchronous audit persistence",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Recorded, m.PersistFailures, m.MirrorFailures, m.PersistDuration)
	}
	return m
}

// IncRecorded increments the recorded counter for category.
func (m *Metrics) IncRecorded(category string) {
	m.Recorded.WithLabelValues(category).Inc()
}

// IncPersistFailures increments the primary failure counter.
func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

// IncMirrorFailures increments the mirror failure counter.
func (m *Metrics) IncMirrorFailures() {
	m.MirrorFailures.Inc()
}

// ObservePersistDuration records how long persistence took.
func (m *Metrics) ObservePersistDuration(seconds float64) {
	m.PersistDuration.Observe(seconds)
}
