package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "entities_service"

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec   // by method, route and status
	requestDuration *prometheus.HistogramVec // by method and route
	validations     *prometheus.CounterVec   // by flavor and outcome
	entitiesCreated prometheus.Counter
	storeErrors     *prometheus.CounterVec // by operation
}

// New creates the collectors on a private registry, together with the Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"method", "route", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route"}),

		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entities",
			Name:      "validations_total",
			Help:      "Total number of entity validations",
		}, []string{"flavor", "outcome"}), // outcome: valid, invalid

		entitiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entities",
			Name:      "created_total",
			Help:      "Total number of entities stored",
		}),

		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total number of document store failures",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.validations,
		m.entitiesCreated,
		m.storeErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest records one handled HTTP request
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordValidation records one entity validation. flavor is empty when no flavor accepted the entity.
func (m *Metrics) RecordValidation(flavor string, valid bool) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	if flavor == "" {
		flavor = "none"
	}
	m.validations.WithLabelValues(flavor, outcome).Inc()
}

// RecordCreated records n stored entities
func (m *Metrics) RecordCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entitiesCreated.Add(float64(n))
}

// RecordStoreError records a failed store operation
func (m *Metrics) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}
