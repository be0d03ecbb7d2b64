// Package metrics provides Prometheus metrics for the minintup decoration
// pipeline. Metrics live on a custom registry; package-level recorders
// write to the global manager.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics of a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Decoration metrics
	eventsRead        prometheus.Counter
	eventsDecorated   prometheus.Counter
	eventsDuplicate   prometheus.Counter
	recordsMalformed  prometheus.Counter
	recordsWritten    prometheus.Counter
	missingFields     *prometheus.CounterVec
	indexMisses       *prometheus.CounterVec
	noValidTag        *prometheus.CounterVec
	tagProbeStates    *prometheus.CounterVec
	decorationLatency prometheus.Histogram
	generatedEvents   *prometheus.GaugeVec

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueTotal      prometheus.Counter
	queueDequeueTotal      prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// metrics are registered on the default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "minintup",
		subsystem:        "decorator",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.eventsRead = m.counter("events_read_total", "Total number of input records read")
	m.eventsDecorated = m.counter("events_decorated_total", "Total number of events decorated")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Total number of repeated (run, event) pairs skipped")
	m.recordsMalformed = m.counter("records_malformed_total", "Total number of input records that could not be decoded")
	m.recordsWritten = m.counter("records_written_total", "Total number of output records written")
	m.missingFields = m.counterVec("missing_fields_total", "Requested input fields absent from a record", "field")
	m.indexMisses = m.counterVec("index_misses_total", "Objects whose position could not be resolved across overlap removal", "kind")
	m.noValidTag = m.counterVec("no_valid_tag_total", "Events without a trigger-matched tag lepton", "tier")
	m.tagProbeStates = m.counterVec("tag_probe_states_total", "Events per tag-and-probe state", "state")
	m.decorationLatency = m.histogram("decoration_latency_milliseconds", "Per-event decoration latency in milliseconds", m.histogramBuckets)
	m.generatedEvents = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "generated_events",
		Help: "Generated events of the run", ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.queueSize = m.gauge("queue_size", "Current size of the event queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of events enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Number of active workers")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerMessagesPerSecond = m.gauge("worker_messages_per_second", "Events decorated per second by the pool")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Decorate and write latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.httpRequestsTotal = m.counterVec("http_requests_total", "Total number of monitoring HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "Monitoring HTTP request duration in milliseconds", ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordEventRead increments the input records counter.
func RecordEventRead() { globalManager.eventsRead.Inc() }

// RecordEventDecorated increments the decorated events counter.
func RecordEventDecorated() { globalManager.eventsDecorated.Inc() }

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordMalformedRecord increments the malformed records counter.
func RecordMalformedRecord() { globalManager.recordsMalformed.Inc() }

// RecordRecordWritten increments the output records counter.
func RecordRecordWritten() { globalManager.recordsWritten.Inc() }

// RecordMissingField counts one absent input field.
func RecordMissingField(field string) { globalManager.missingFields.WithLabelValues(field).Inc() }

// RecordIndexMisses counts unresolved positions of the given kind.
func RecordIndexMisses(kind string, n int) {
	if n > 0 {
		globalManager.indexMisses.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordNoValidTag counts an event without a tag lepton at tier.
func RecordNoValidTag(tier string) { globalManager.noValidTag.WithLabelValues(tier).Inc() }

// RecordTagProbeState counts an event in the given state.
func RecordTagProbeState(state string) { globalManager.tagProbeStates.WithLabelValues(state).Inc() }

// RecordDecorationLatency records the decoration latency in milliseconds.
func RecordDecorationLatency(latencyMs float64) { globalManager.decorationLatency.Observe(latencyMs) }

// UpdateGeneratedEvents publishes the run counters.
func UpdateGeneratedEvents(raw uint64, weighted float64) {
	globalManager.generatedEvents.WithLabelValues("raw").Set(float64(raw))
	globalManager.generatedEvents.WithLabelValues("weighted").Set(weighted)
}

// UpdateQueueSize updates the queue size gauge.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity updates the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization updates the queue utilization gauge.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueueTotal.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeueTotal.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordQueueProcessingLatency records the enqueue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount updates the active workers gauge.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// UpdateWorkerIdleCount updates the idle workers gauge.
func UpdateWorkerIdleCount(count int) { globalManager.workerIdleCount.Set(float64(count)) }

// UpdateWorkerMessagesPerSecond updates the pool throughput gauge.
func UpdateWorkerMessagesPerSecond(rate float64) { globalManager.workerMessagesPerSecond.Set(rate) }

// RecordWorkerProcessingLatency records the per-event worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest counts one monitoring HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequestsTotal.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records a monitoring HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error of errorType in component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage updates the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{Registry: customRegistry})
}
