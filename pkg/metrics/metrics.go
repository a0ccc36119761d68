// Package metrics exposes Prometheus metrics for tour analyses.
//
// A [Registry] implements the observability hook interfaces, so registering
// it is all that is needed to start counting:
//
//	reg := metrics.NewRegistry()
//	observability.Register(reg)
//	router.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/panotour/pkg/observability"
)

// Registry holds all metrics of the application.
type Registry struct {
	// Analysis Metrics
	DocumentsLoadedTotal *prometheus.CounterVec
	AnalysesTotal        prometheus.Counter
	AnalysisDuration     prometheus.Histogram
	SceneCount           prometheus.Histogram
	IssueCount           prometheus.Histogram
	LayoutsTotal         *prometheus.CounterVec
	LayoutDuration       prometheus.Histogram

	// Cache Metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWriteBytes    *prometheus.HistogramVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initAnalysisMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initAnalysisMetrics() {
	r.DocumentsLoadedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_documents_loaded_total",
			Help: "Total number of tour documents decoded",
		},
		[]string{"status"}, // success, error
	)

	r.AnalysesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "panotour_analyses_total",
			Help: "Total number of completed analyses",
		},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "panotour_analysis_duration_seconds",
			Help:    "Duration of a full analysis in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	r.SceneCount = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "panotour_analysis_scenes",
			Help:    "Number of scenes per analysed tour",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
		},
	)

	r.IssueCount = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "panotour_analysis_issues",
			Help:    "Number of parse errors and integrity issues per analysed tour",
			Buckets: []float64{0, 1, 5, 10, 25, 100},
		},
	)

	r.LayoutsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_layouts_total",
			Help: "Total number of Graphviz layout runs",
		},
		[]string{"status"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "panotour_layout_duration_seconds",
			Help:    "Duration of Graphviz layout runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key_type", "result"}, // hit, miss
	)

	r.CacheWriteBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panotour_cache_write_bytes",
			Help:    "Size of cache writes in bytes",
			Buckets: []float64{1000, 10000, 100000, 1000000},
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panotour_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// OnLoad implements [observability.AnalysisHooks].
func (r *Registry) OnLoad(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	r.DocumentsLoadedTotal.WithLabelValues(status(err)).Inc()
}

// OnAnalyzeComplete implements [observability.AnalysisHooks].
func (r *Registry) OnAnalyzeComplete(_ context.Context, sceneCount, issueCount int, duration time.Duration) {
	r.AnalysesTotal.Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
	r.SceneCount.Observe(float64(sceneCount))
	r.IssueCount.Observe(float64(issueCount))
}

// OnLayoutComplete implements [observability.AnalysisHooks].
func (r *Registry) OnLayoutComplete(_ context.Context, _ int, duration time.Duration, err error) {
	r.LayoutsTotal.WithLabelValues(status(err)).Inc()
	r.LayoutDuration.Observe(duration.Seconds())
}

// OnCacheHit implements [observability.CacheHooks].
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [observability.CacheHooks].
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [observability.CacheHooks].
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnResponse implements [observability.HTTPHooks].
func (r *Registry) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	_ observability.AnalysisHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
