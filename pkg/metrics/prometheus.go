// Package metrics provides Prometheus metrics for the critics recommendation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// resultSizeBuckets covers list lengths from empty to a few hundred items.
var resultSizeBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the critics service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core engine metrics
	similarityComputations prometheus.Counter
	similarityCacheHits    prometheus.Counter
	similarityCacheMisses  prometheus.Counter
	topMatchesLatency      prometheus.Histogram
	recommendLatency       prometheus.Histogram
	recommendResultSize    prometheus.Histogram
	unknownRaterErrors     prometheus.Counter

	// Dataset metrics
	ratersTotal      prometheus.Gauge
	itemsTotal       prometheus.Gauge
	datasetLoads     *prometheus.CounterVec
	datasetLastLoad  prometheus.Gauge
	similarityCached prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "critics",
		subsystem:        "recommender",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix != "" {
		return m.metricPrefix + "_" + n
	}
	return n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.similarityComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("similarity_computations_total"),
		Help:        "Total number of pairwise similarity scores computed from the table",
		ConstLabels: labels,
	})

	m.similarityCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("similarity_cache_hits_total"),
		Help:        "Total number of similarity lookups served from the pair cache",
		ConstLabels: labels,
	})

	m.similarityCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("similarity_cache_misses_total"),
		Help:        "Total number of similarity lookups that missed the pair cache",
		ConstLabels: labels,
	})

	m.topMatchesLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("top_matches_latency_milliseconds"),
		Help:        "Histogram of top matches computation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.recommendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_latency_milliseconds"),
		Help:        "Histogram of recommendation computation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.recommendResultSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommend_result_size"),
		Help:        "Number of items returned per recommendation request",
		Buckets:     resultSizeBuckets,
		ConstLabels: labels,
	})

	m.unknownRaterErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("unknown_rater_errors_total"),
		Help:        "Total number of requests naming a rater absent from the table",
		ConstLabels: labels,
	})

	m.ratersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("raters_total"),
		Help:        "Number of raters in the loaded table",
		ConstLabels: labels,
	})

	m.itemsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("items_total"),
		Help:        "Number of distinct items in the loaded table",
		ConstLabels: labels,
	})

	m.datasetLoads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("dataset_loads_total"),
			Help:        "Total number of dataset loads by source and outcome",
			ConstLabels: labels,
		},
		[]string{"source", "outcome"},
	)

	m.datasetLastLoad = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("dataset_last_load_unix"),
		Help:        "Unix timestamp of the last successful dataset load",
		ConstLabels: labels,
	})

	m.similarityCached = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("similarity_cache_entries"),
		Help:        "Number of rater pairs currently held in the similarity cache",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})
}

// RecordSimilarityComputation increments the computed similarity counter.
func RecordSimilarityComputation() {
	globalManager.similarityComputations.Inc()
}

// RecordSimilarityCacheHit increments the cache hit counter.
func RecordSimilarityCacheHit() {
	globalManager.similarityCacheHits.Inc()
}

// RecordSimilarityCacheMiss increments the cache miss counter.
func RecordSimilarityCacheMiss() {
	globalManager.similarityCacheMisses.Inc()
}

// UpdateSimilarityCacheEntries sets the number of cached rater pairs.
func UpdateSimilarityCacheEntries(n int) {
	globalManager.similarityCached.Set(float64(n))
}

// RecordTopMatchesLatency records top matches latency in milliseconds.
func RecordTopMatchesLatency(latencyMs float64) {
	globalManager.topMatchesLatency.Observe(latencyMs)
}

// RecordRecommendLatency records recommendation latency in milliseconds.
func RecordRecommendLatency(latencyMs float64) {
	globalManager.recommendLatency.Observe(latencyMs)
}

// RecordRecommendResultSize records how many items a recommendation returned.
func RecordRecommendResultSize(n int) {
	globalManager.recommendResultSize.Observe(float64(n))
}

// RecordUnknownRater increments the unknown rater counter.
func RecordUnknownRater() {
	globalManager.unknownRaterErrors.Inc()
}

// UpdateDatasetSize sets the rater and item gauges.
func UpdateDatasetSize(raters, items int) {
	globalManager.ratersTotal.Set(float64(raters))
	globalManager.itemsTotal.Set(float64(items))
}

// RecordDatasetLoad counts a dataset load attempt; successful loads also stamp the load time.
func RecordDatasetLoad(source string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	globalManager.datasetLoads.WithLabelValues(source, outcome).Inc()
	if err == nil {
		globalManager.datasetLastLoad.Set(float64(time.Now().Unix()))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
