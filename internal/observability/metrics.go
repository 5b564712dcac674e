package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultAuthorized   = "authorized"
	resultUnauthorized = "unauthorized"
	resultBypassed     = "bypassed"
	resultSuccess      = "success"
	resultFailure      = "failure"
)

// Metrics records authorization and HTTP metrics with Prometheus. A nil
// *Metrics is a valid no-op recorder.
type Metrics struct {
	decisions       *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	cacheIdentities prometheus.Gauge
	requests        *prometheus.CounterVec
	errors          *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_decisions_total",
			Help: "Request authorization decisions",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_cache_refresh_total",
			Help: "Authorization cache refresh cycles",
		}, []string{"reason", "result"}),
		cacheIdentities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auth_cache_identities",
			Help: "Entries in the authorization cache, revoked ones included",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status",
		}, []string{"method", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by code",
		}, []string{"code"}),
	}

	reg.MustRegister(m.decisions, m.refreshes, m.cacheIdentities, m.requests, m.errors)
	return m
}

// RecordDecision counts one authorization outcome.
func (m *Metrics) RecordDecision(authorized bool) {
	if m == nil {
		return
	}
	result := resultUnauthorized
	if authorized {
		result = resultAuthorized
	}
	m.decisions.WithLabelValues(result).Inc()
}

// RecordBypass counts a request admitted by the test bypass.
func (m *Metrics) RecordBypass() {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(resultBypassed).Inc()
}

// RecordRefresh counts one refresh cycle and tracks the cache size.
func (m *Metrics) RecordRefresh(reason string, success bool, identities int) {
	if m == nil {
		return
	}
	result := resultFailure
	if success {
		result = resultSuccess
	}
	m.refreshes.WithLabelValues(reason, result).Inc()
	m.cacheIdentities.Set(float64(identities))
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(code).Inc()
}
