// Package metrics provides Prometheus metrics for the concordance service.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation outcomes used as label values.
const (
	OutcomeConcordant    = "concordant"
	OutcomeNotConcordant = "not_concordant"
	OutcomeInvalid       = "invalid_input"
)

// Manager owns every metric of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Statistics
	evaluations       *prometheus.CounterVec
	evaluationLatency prometheus.Histogram
	coefficient       prometheus.Histogram
	inputErrors       *prometheus.CounterVec

	// Asynchronous analyses
	analysesSubmitted prometheus.Counter
	analysesDuplicate prometheus.Counter
	analysesCompleted *prometheus.CounterVec
	storedAnalyses    prometheus.Gauge

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected *prometheus.CounterVec
	workerActive  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // service-wide registry

var globalManager = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // singleton used by the package-level recorders

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "kendall",
		subsystem:      "concordance",
		latencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(m.counterOpts("evaluations_total",
		"Concordance evaluations by outcome"), []string{"outcome"})
	m.evaluationLatency = auto.NewHistogram(m.histogramOpts("evaluation_latency_milliseconds",
		"Time spent adjusting ranks and evaluating W", m.latencyBuckets))
	m.coefficient = auto.NewHistogram(m.histogramOpts("coefficient_w",
		"Distribution of computed W values", prometheus.LinearBuckets(0, 0.1, 11)))
	m.inputErrors = auto.NewCounterVec(m.counterOpts("input_errors_total",
		"Rejected inputs by stage"), []string{"stage"})

	m.analysesSubmitted = auto.NewCounter(m.counterOpts("analyses_submitted_total",
		"Asynchronous analyses accepted"))
	m.analysesDuplicate = auto.NewCounter(m.counterOpts("analyses_duplicate_total",
		"Submissions answered by an existing analysis"))
	m.analysesCompleted = auto.NewCounterVec(m.counterOpts("analyses_completed_total",
		"Asynchronous analyses finished by status"), []string{"status"})
	m.storedAnalyses = auto.NewGauge(m.gaugeOpts("stored_analyses",
		"Analyses currently held in the repository"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Analyses waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue length"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total",
		"Enqueue attempts rejected by reason"), []string{"reason"})
	m.workerActive = auto.NewGauge(m.gaugeOpts("workers_active", "Running evaluation workers"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.latencyBuckets), []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP error responses by endpoint and type"), []string{"endpoint", "error_type"})
}

// RecordEvaluation records one successful evaluation.
func (m *Manager) RecordEvaluation(w float64, concordant bool, latencyMs float64) {
	outcome := OutcomeNotConcordant
	if concordant {
		outcome = OutcomeConcordant
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	m.evaluationLatency.Observe(latencyMs)
	m.coefficient.Observe(w)
}

// RecordInputError records an evaluation rejected as invalid input at stage
// ("load", "adjust", "evaluate", "limits").
func (m *Manager) RecordInputError(stage string) {
	m.evaluations.WithLabelValues(OutcomeInvalid).Inc()
	m.inputErrors.WithLabelValues(stage).Inc()
}

// RecordEvaluation records a successful evaluation on the global manager.
func RecordEvaluation(w float64, concordant bool, latencyMs float64) {
	globalManager.RecordEvaluation(w, concordant, latencyMs)
}

// RecordInputError records an invalid input on the global manager.
func RecordInputError(stage string) {
	globalManager.RecordInputError(stage)
}

// RecordAnalysisSubmitted increments the accepted analyses counter.
func RecordAnalysisSubmitted() {
	globalManager.analysesSubmitted.Inc()
}

// RecordAnalysisDuplicate increments the duplicate submissions counter.
func RecordAnalysisDuplicate() {
	globalManager.analysesDuplicate.Inc()
}

// RecordAnalysisCompleted counts a finished analysis by terminal status.
func RecordAnalysisCompleted(status string) {
	globalManager.analysesCompleted.WithLabelValues(status).Inc()
}

// UpdateStoredAnalyses sets the repository size.
func UpdateStoredAnalyses(count int) {
	globalManager.storedAnalyses.Set(float64(count))
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue length.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a rejected enqueue ("closed", "full", "context_cancelled").
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerActive sets the number of running workers.
func UpdateWorkerActive(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// custom registry. Registering twice is a no-op.
func RegisterRuntimeCollectors() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := customRegistry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("register runtime collector: %w", err)
		}
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Snapshot gathers the custom registry and returns metric family names mapped
// to the number of series they hold.
func Snapshot() (map[string]int, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGather, err)
	}
	out := make(map[string]int, len(families))
	for _, f := range families {
		out[f.GetName()] = len(f.GetMetric())
	}
	return out, nil
}
