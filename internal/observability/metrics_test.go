package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string) *io_prometheus_client.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelsOf(m *io_prometheus_client.Metric) map[string]string {
	out := map[string]string{}
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func TestMetricsRecordDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordDecision(true)
	m.RecordDecision(false)
	m.RecordDecision(false)
	m.RecordBypass()

	counts := map[string]float64{}
	for _, metric := range findMetric(t, reg, "auth_decisions_total").GetMetric() {
		counts[labelsOf(metric)["result"]] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, 1.0, counts["authorized"])
	assert.Equal(t, 2.0, counts["unauthorized"])
	assert.Equal(t, 1.0, counts["bypassed"])
}

func TestMetricsRecordRefresh(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRefresh("triggered", true, 3)
	m.RecordRefresh("periodic", false, 3)

	gauge := findMetric(t, reg, "auth_cache_identities").GetMetric()[0].GetGauge().GetValue()
	assert.Equal(t, 3.0, gauge)

	refreshes := findMetric(t, reg, "auth_cache_refresh_total").GetMetric()
	assert.Len(t, refreshes, 2)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordDecision(true)
	m.RecordBypass()
	m.RecordRefresh("periodic", true, 1)
	m.RecordRequest("GET", 200)
	m.RecordError("UNAUTHORIZED")
}
