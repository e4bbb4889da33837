package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Fetch metrics
	FetchRequestsTotal *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
	FetchErrorsTotal   *prometheus.CounterVec
	FetchesSuperseded  prometheus.Counter
	SeriesPoints       prometheus.Histogram

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// pointBuckets cover the day counts of the selectable ranges
var pointBuckets = []float64{7, 14, 30, 90, 365, 1825}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Fetch metrics
		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "fetch",
				Name:      "requests_total",
				Help:      "Total number of stock fetch requests by range",
			},
			[]string{"range"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_viewer",
				Subsystem: "fetch",
				Name:      "duration_seconds",
				Help:      "Duration of stock fetches in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"status"},
		),
		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "fetch",
				Name:      "errors_total",
				Help:      "Total number of failed fetches by cause",
			},
			[]string{"cause"},
		),
		FetchesSuperseded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "fetch",
				Name:      "superseded_total",
				Help:      "Fetches cancelled because a newer fetch was submitted",
			},
		),
		SeriesPoints: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "stock_viewer",
				Subsystem: "fetch",
				Name:      "series_points",
				Help:      "Number of points in rendered closing-price series",
				Buckets:   pointBuckets,
			},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_viewer",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_viewer",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock_viewer",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "stock_viewer",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock_viewer",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordFetchRequest records a submitted fetch for a range label
func (m *Metrics) RecordFetchRequest(rangeLabel string) {
	m.FetchRequestsTotal.WithLabelValues(rangeLabel).Inc()
}

// RecordFetchDuration records how long a fetch took to reach a terminal state
func (m *Metrics) RecordFetchDuration(status string, duration time.Duration) {
	m.FetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordFetchError records a failed fetch
func (m *Metrics) RecordFetchError(cause string) {
	m.FetchErrorsTotal.WithLabelValues(cause).Inc()
}

// RecordFetchSuperseded records a fetch cancelled by a newer one
func (m *Metrics) RecordFetchSuperseded() {
	m.FetchesSuperseded.Inc()
}

// RecordSeriesPoints records the length of a rendered series
func (m *Metrics) RecordSeriesPoints(n int) {
	m.SeriesPoints.Observe(float64(n))
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveFetch records the fetch duration and terminal status
func (t *Timer) ObserveFetch(status string) {
	t.metrics.RecordFetchDuration(status, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
