package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(nil)

	m.IncRegistrationOutcome("registered")
	m.IncRegistrationOutcome("registered")
	m.IncRegistrationOutcome("waitlisted")
	m.IncEventStatus("PUBLISHED")
	m.ObserveHTTP("/events", "200", 0.01)

	assert.InDelta(t, 2, testutil.ToFloat64(m.RegistrationOutcomes.WithLabelValues("registered")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RegistrationOutcomes.WithLabelValues("waitlisted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventStatuses.WithLabelValues("PUBLISHED")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/events", "200")), 0)
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.IncEventStatus("CANCELLED")

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `atelier_event_status_transitions_total{status="CANCELLED"} 1`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
