package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the business counters of the lifecycle engine.
type Metrics struct {
	RegistrationOutcomes *prometheus.CounterVec
	EventStatuses        *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New creates the counters and registers them with reg.
// A nil registerer leaves them unregistered, which suits tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RegistrationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_registration_outcomes_total",
			Help: "Total number of participant registrations, by outcome",
		}, []string{"outcome"}),
		EventStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_event_status_transitions_total",
			Help: "Total number of event status transitions, by target status",
		}, []string{"status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atelier_http_requests_total",
			Help: "Total number of HTTP requests, by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atelier_http_request_duration_seconds",
			Help:    "Latency of HTTP requests, by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(m.RegistrationOutcomes, m.EventStatuses, m.HTTPRequests, m.HTTPDuration)
	}
	return m
}

// NewRegistry returns a registry preloaded with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func (m *Metrics) IncRegistrationOutcome(outcome string) {
	m.RegistrationOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncEventStatus(status string) {
	m.EventStatuses.WithLabelValues(status).Inc()
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(route, code string, seconds float64) {
	m.HTTPRequests.WithLabelValues(route, code).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}
