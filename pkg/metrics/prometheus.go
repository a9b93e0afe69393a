// Package metrics provides Prometheus metrics for the matchscout service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	pointBuckets     []float64
	registry         prometheus.Registerer

	// Entry pipeline
	entriesReceived     *prometheus.CounterVec
	entriesDuplicate    prometheus.Counter
	entriesRejected     *prometheus.CounterVec
	entriesScored       prometheus.Counter
	exclusivityViolated *prometheus.CounterVec
	points              *prometheus.HistogramVec
	evaluationLatency   prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// Store
	storeRecords      prometheus.Gauge
	storeWriteLatency *prometheus.HistogramVec
	storeQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchscout",
		subsystem:        "scouting",
		histogramBuckets: prometheus.DefBuckets,
		pointBuckets:     []float64{0, 5, 10, 20, 30, 45, 60, 80, 100, 150},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.entriesReceived = m.counterVec("entries_received_total", "Raw match entries accepted for processing, by input shape", "shape")
	m.entriesDuplicate = m.counter("entries_duplicate_total", "Entries dropped because their ID was already seen")
	m.entriesRejected = m.counterVec("entries_rejected_total", "Entries rejected before scoring, by reason", "reason")
	m.entriesScored = m.counter("entries_scored_total", "Entries aggregated, scored and stored")
	m.exclusivityViolated = m.counterVec("exclusivity_violations_total", "Mutual-exclusion groups with more than one true toggle", "phase", "group")
	m.points = m.histogramVec("entry_points", "Points per scored entry, by phase", m.pointBuckets, "phase")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds", "Time to aggregate, check and score one entry")

	m.queueSize = m.gauge("queue_size", "Entries waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Entries enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Entries dequeued")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Failed enqueue attempts, by reason", "reason")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing an entry")
	m.workerErrors = m.counter("worker_errors_total", "Entries a worker failed to process")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one entry")

	m.storeRecords = m.gauge("store_records_total", "Scored entries held by the store")
	m.storeWriteLatency = m.histogramVec("store_write_latency_milliseconds", "Store write latency", m.histogramBuckets, "driver")
	m.storeQueryLatency = m.histogramVec("store_query_latency_milliseconds", "Store query latency", m.histogramBuckets, "driver")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
}

// RecordEntryReceived counts an accepted entry of the given input shape.
func RecordEntryReceived(shape string) {
	globalManager.entriesReceived.WithLabelValues(shape).Inc()
}

// RecordEntryDuplicate counts an entry dropped by the deduper.
func RecordEntryDuplicate() {
	globalManager.entriesDuplicate.Inc()
}

// RecordEntryRejected counts an entry rejected before scoring.
func RecordEntryRejected(reason string) {
	globalManager.entriesRejected.WithLabelValues(reason).Inc()
}

// RecordEntryScored counts a scored entry and observes its phase points.
func RecordEntryScored(auto, teleop, endgame, total int) {
	globalManager.entriesScored.Inc()
	globalManager.points.WithLabelValues("auto").Observe(float64(auto))
	globalManager.points.WithLabelValues("teleop").Observe(float64(teleop))
	globalManager.points.WithLabelValues("endgame").Observe(float64(endgame))
	globalManager.points.WithLabelValues("total").Observe(float64(total))
}

// RecordExclusivityViolation counts one violated exclusion group.
func RecordExclusivityViolation(phase, group string) {
	globalManager.exclusivityViolated.WithLabelValues(phase, group).Inc()
}

// RecordEvaluationLatency records evaluation latency in milliseconds.
func RecordEvaluationLatency(latencyMs float64) {
	globalManager.evaluationLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the number of busy workers by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// UpdateStoreRecords sets the number of stored entries.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordStoreWriteLatency records a store write for driver.
func RecordStoreWriteLatency(driver string, latencyMs float64) {
	globalManager.storeWriteLatency.WithLabelValues(driver).Observe(latencyMs)
}

// RecordStoreQueryLatency records a store read for driver.
func RecordStoreQueryLatency(driver string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(driver).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
