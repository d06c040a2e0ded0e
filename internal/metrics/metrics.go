package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics owns every collector the server exports.
// All methods are safe on a nil receiver so metrics can be disabled.
type ServerMetrics struct {
	handler   http.Handler
	inflight  prometheus.Gauge
	reqTotal  *prometheus.CounterVec
	reqDur    *prometheus.HistogramVec
	respBytes *prometheus.HistogramVec

	errorsTotal          *prometheus.CounterVec
	ratelimitDeniedTotal *prometheus.CounterVec

	publishTotal    *prometheus.CounterVec
	validationTotal *prometheus.CounterVec
	liveTotal       *prometheus.CounterVec
	liveCacheTotal  *prometheus.CounterVec
	auditDropped    prometheus.Counter
}

// New returns a fresh registry with the standard collectors.
// Labels are limited to method, route, and status to keep cardinality bounded.
func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		respBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response size by method and route",
			Buckets: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
		}, []string{"method", "route"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total 5xx HTTP server errors by method and route",
		}, []string{"method", "route"}),
		ratelimitDeniedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total requests rejected by a rate limiter",
		}, []string{"limiter"}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitepublish_publish_total",
			Help: "Publish and rollback attempts by operation and result",
		}, []string{"operation", "result"}),
		validationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitepublish_prepublish_runs_total",
			Help: "Pre-publish validation runs by result",
		}, []string{"result"}),
		liveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitepublish_live_resolutions_total",
			Help: "Public resolutions by kind (page, asset) and result",
		}, []string{"kind", "result"}),
		liveCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitepublish_live_cache_total",
			Help: "Live page cache lookups by result",
		}, []string{"result"}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitepublish_audit_dropped_total",
			Help: "Audit entries that failed to write and were discarded",
		}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.respBytes,
		m.errorsTotal,
		m.ratelimitDeniedTotal,
		m.publishTotal,
		m.validationTotal,
		m.liveTotal,
		m.liveCacheTotal,
		m.auditDropped,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return m.handler
}

func (m *ServerMetrics) IncRateLimitDenied(limiter string) {
	if m == nil {
		return
	}
	m.ratelimitDeniedTotal.WithLabelValues(limiter).Inc()
}

// IncPublish counts a publish or rollback attempt
func (m *ServerMetrics) IncPublish(operation, result string) {
	if m == nil {
		return
	}
	m.publishTotal.WithLabelValues(operation, result).Inc()
}

func (m *ServerMetrics) IncValidation(valid bool) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.validationTotal.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) IncLive(kind, result string) {
	if m == nil {
		return
	}
	m.liveTotal.WithLabelValues(kind, result).Inc()
}

func (m *ServerMetrics) IncLiveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.liveCacheTotal.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}
