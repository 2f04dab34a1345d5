// Package metrics holds the Prometheus collectors exported by the API.
// Every constructor accepts a nil Registerer and returns a no-op value,
// so callers never need to guard metric calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lostfound"

// HTTPMetrics records request counts and latencies per route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records one completed request.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AuditMetrics tracks the outcome of login audit writes.
type AuditMetrics struct {
	recorded *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	attempts prometheus.Histogram
}

// NewAuditMetrics registers the login audit collectors on reg.
func NewAuditMetrics(reg prometheus.Registerer) *AuditMetrics {
	if reg == nil {
		return &AuditMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_audit_recorded_total",
		Help:      "Login audit entries persisted, by login source.",
	}, []string{"source"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_audit_dropped_total",
		Help:      "Login audit entries abandoned after exhausting retries.",
	}, []string{"source"})
	attempts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_audit_attempts",
		Help:      "Write attempts needed per login audit entry.",
		Buckets:   []float64{1, 2, 3, 5, 8},
	})
	reg.MustRegister(recorded, dropped, attempts)
	return &AuditMetrics{recorded: recorded, dropped: dropped, attempts: attempts}
}

// IncRecorded counts a persisted entry and the attempts it took.
func (m *AuditMetrics) IncRecorded(source string, attempts int) {
	if m == nil || m.recorded == nil {
		return
	}
	m.recorded.WithLabelValues(normalizeLabel(source)).Inc()
	m.attempts.Observe(float64(attempts))
}

// IncDropped counts an entry that could not be persisted.
func (m *AuditMetrics) IncDropped(source string, attempts int) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(source)).Inc()
	m.attempts.Observe(float64(attempts))
}

// CacheMetrics counts hits and misses of a named cache.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
}

// NewCacheMetrics registers the cache collectors on reg.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups, by cache name and result.",
	}, []string{"cache", "result"})
	reg.MustRegister(lookups)
	return &CacheMetrics{lookups: lookups}
}

func (m *CacheMetrics) IncHit(cache string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(cache), "hit").Inc()
}

func (m *CacheMetrics) IncMiss(cache string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(cache), "miss").Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
