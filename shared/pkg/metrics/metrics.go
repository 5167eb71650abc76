package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported by the location directive service
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	LocationSelections  *prometheus.CounterVec
	SelectionDuration   *prometheus.HistogramVec
	StrategyFaults      *prometheus.CounterVec
	CandidatesEvaluated *prometheus.HistogramVec
	DirectivesActive    *prometheus.GaugeVec

	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
	}
}

// New creates a Metrics instance on its own registry
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ns := config.Namespace
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: name, Help: help}, append([]string{"service"}, labels...))
	}
	histogram := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: name, Help: help, Buckets: buckets}, append([]string{"service"}, labels...))
	}
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: name, Help: help}, append([]string{"service"}, labels...))
	}
	latency := []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,

		HTTPRequestsTotal:   counter("http_requests_total", "Total number of HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: histogram("http_request_duration_seconds", "HTTP request duration in seconds", latency, "method", "path"),
		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		}),

		KafkaEventsPublished: counter("kafka_events_published_total", "Total number of Kafka events published", "topic", "event_type", "status"),
		KafkaPublishDuration: histogram("kafka_publish_duration_seconds", "Kafka publish duration in seconds", latency, "topic"),

		MongoDBOperations:        counter("mongodb_operations_total", "Total number of MongoDB operations", "collection", "operation", "status"),
		MongoDBOperationDuration: histogram("mongodb_operation_duration_seconds", "MongoDB operation duration in seconds", latency, "collection", "operation"),

		LocationSelections:  counter("location_selections_total", "Location selections by operation type, winning strategy and outcome", "operation_type", "strategy", "outcome"),
		SelectionDuration:   histogram("location_selection_duration_seconds", "Duration of a directive selection call", latency, "operation"),
		StrategyFaults:      counter("location_strategy_faults_total", "Strategy invocations that failed or panicked", "strategy"),
		CandidatesEvaluated: histogram("location_candidates_evaluated", "Candidate locations scored per ranking call", []float64{1, 5, 10, 25, 50, 100, 250}, "operation_type"),
		DirectivesActive:    gauge("location_directives_active", "Active directives per operation type", "operation_type"),

		CircuitBreakerState: gauge("circuit_breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)", "name"),
		CircuitBreakerTrips: counter("circuit_breaker_trips_total", "Number of times a circuit breaker opened", "name"),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.LocationSelections,
		m.SelectionDuration,
		m.StrategyFaults,
		m.CandidatesEvaluated,
		m.DirectivesActive,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, code int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments in-flight requests
func (m *Metrics) IncrementHTTPRequestsInFlight() { m.HTTPRequestsInFlight.Inc() }

// DecrementHTTPRequestsInFlight decrements in-flight requests
func (m *Metrics) DecrementHTTPRequestsInFlight() { m.HTTPRequestsInFlight.Dec() }

// RecordKafkaPublish records a Kafka publish attempt
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, status(success)).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status(success)).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordSelection records the outcome of one location selection. An empty
// strategy means no directive produced a location.
func (m *Metrics) RecordSelection(operationType, strategy string, found bool, duration time.Duration) {
	outcome := "selected"
	if !found {
		outcome = "none"
		strategy = "none"
	}
	m.LocationSelections.WithLabelValues(m.serviceName, operationType, strategy, outcome).Inc()
	m.SelectionDuration.WithLabelValues(m.serviceName, "select").Observe(duration.Seconds())
}

// ObserveEngineCall records the duration of a non-select engine call
func (m *Metrics) ObserveEngineCall(operation string, duration time.Duration) {
	m.SelectionDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

// RecordStrategyFault counts a failed or panicking strategy invocation
func (m *Metrics) RecordStrategyFault(strategy string) {
	m.StrategyFaults.WithLabelValues(m.serviceName, strategy).Inc()
}

// ObserveCandidates records how many locations a ranking call scored
func (m *Metrics) ObserveCandidates(operationType string, count int) {
	m.CandidatesEvaluated.WithLabelValues(m.serviceName, operationType).Observe(float64(count))
}

// SetActiveDirectives sets the active directive gauge for one operation type
func (m *Metrics) SetActiveDirectives(operationType string, count int64) {
	m.DirectivesActive.WithLabelValues(m.serviceName, operationType).Set(float64(count))
}

// SetCircuitBreakerState sets the circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}
