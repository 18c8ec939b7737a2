package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("hms", reg)

	m.HTTPRequests.WithLabelValues("GET", "/api/v1/patients", "200").Inc()
	m.OutboxEventsProcessed.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "hms_http_requests_total")
	assert.Contains(t, names, "hms_outbox_events_processed_total")
}

func TestObserveCircuit(t *testing.T) {
	m := NewMetrics("hms", nil)

	m.ObserveCircuit("storage", "closed", "open")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitState.WithLabelValues("storage")))

	m.ObserveCircuit("storage", "open", "half-open")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CircuitState.WithLabelValues("storage")))
}
