package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tick results used as label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Manager manages the exporter's self-metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Collection pass metrics
	ticks                 *prometheus.CounterVec
	tickDuration          prometheus.Histogram
	lastSuccess           prometheus.Gauge
	lastTickObservations  prometheus.Gauge
	observationsPublished prometheus.Counter
	modelsProcessed       prometheus.Counter

	// Upstream API metrics
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "numerai",
		subsystem:        "exporter",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every self-metric
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.ticks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ticks_total",
		Help:        "Total number of collection passes by result",
		ConstLabels: constLabels,
	}, []string{"result"})

	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tick_duration_seconds",
		Help:        "Duration of a collection pass in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.lastSuccess = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last successful collection pass",
		ConstLabels: constLabels,
	})

	m.lastTickObservations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_tick_observations",
		Help:        "Number of observations published by the last successful pass",
		ConstLabels: constLabels,
	})

	m.observationsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "observations_published_total",
		Help:        "Total number of observations published",
		ConstLabels: constLabels,
	})

	m.modelsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "models_processed_total",
		Help:        "Total number of models aggregated",
		ConstLabels: constLabels,
	})

	m.apiRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "api_requests_total",
		Help:        "Total number of tournament API requests by operation and result",
		ConstLabels: constLabels,
	}, []string{"operation", "result"})

	m.apiRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "api_request_duration_seconds",
		Help:        "Tournament API request duration in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_active_count",
		Help:        "Number of workers currently processing a model",
		ConstLabels: constLabels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_processing_latency_milliseconds",
		Help:        "Per-model processing latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_errors_total",
		Help:        "Total number of failed model jobs",
		ConstLabels: constLabels,
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "Heap memory in use in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})
}

// RecordTick records the outcome of a collection pass.
func (m *Manager) RecordTick(ok bool, took time.Duration, models, observations int) {
	m.tickDuration.Observe(took.Seconds())
	if !ok {
		m.ticks.WithLabelValues(ResultFailure).Inc()
		return
	}
	m.ticks.WithLabelValues(ResultSuccess).Inc()
	m.lastSuccess.SetToCurrentTime()
	m.lastTickObservations.Set(float64(observations))
	m.observationsPublished.Add(float64(observations))
	m.modelsProcessed.Add(float64(models))
}

// RecordAPIRequest records one upstream request.
func (m *Manager) RecordAPIRequest(operation string, err error, took time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.apiRequests.WithLabelValues(operation, result).Inc()
	m.apiRequestDuration.WithLabelValues(operation).Observe(took.Seconds())
}

// RecordHTTPRequest records an HTTP request and its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, durationMs float64) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// WorkerStarted and WorkerFinished bracket one model job.
func (m *Manager) WorkerStarted() { m.workerActiveCount.Inc() }

// WorkerFinished records the job latency and whether it failed.
func (m *Manager) WorkerFinished(took time.Duration, err error) {
	m.workerActiveCount.Dec()
	m.workerProcessingLatency.Observe(float64(took) / float64(time.Millisecond))
	if err != nil {
		m.workerErrors.Inc()
	}
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMetrics samples heap usage and goroutine count.
func (m *Manager) UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Default returns the manager bound to the custom registry.
func Default() *Manager {
	return globalManager
}

// RecordTick records a collection pass on the global manager.
func RecordTick(ok bool, took time.Duration, models, observations int) {
	globalManager.RecordTick(ok, took, models, observations)
}

// RecordAPIRequest records an upstream request on the global manager.
func RecordAPIRequest(operation string, err error, took time.Duration) {
	globalManager.RecordAPIRequest(operation, err, took)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method string, status int, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, status, durationMs)
}

// RecordErrorByComponent records an error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// UpdateSystemMetrics samples runtime stats on the global manager.
func UpdateSystemMetrics() {
	globalManager.UpdateSystemMetrics()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
