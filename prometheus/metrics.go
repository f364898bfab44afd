package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Outbound API calls by backend, operation and status class
	APIRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_api_requests_total",
			Help: "Total number of backend API requests by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)

	// Client-side errors by taxonomy code
	ClientErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_client_errors_total",
			Help: "Total number of failed backend interactions by error code",
		},
		[]string{"backend", "code"},
	)

	// Session operations (login, register, logout, ...)
	SessionOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_session_operations_total",
			Help: "Total number of session operations",
		},
		[]string{"operation"},
	)

	// Clinic operations (load, switch, create, join)
	ClinicOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_clinic_operations_total",
			Help: "Total number of clinic operations",
		},
		[]string{"operation"},
	)

	// Stub server HTTP requests by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_stub_http_requests_total",
			Help: "Total number of HTTP requests handled by the stub server",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Outbound API call duration
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinicdesk_api_request_duration_seconds",
			Help:    "Duration of backend API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// Stub server request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinicdesk_stub_request_duration_seconds",
			Help:    "Duration of stub server HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clinicdesk_info",
			Help: "Information about the clinicdesk client",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(APIRequestCounter)
	prometheus.MustRegister(ClientErrorCounter)
	prometheus.MustRegister(SessionOperationCounter)
	prometheus.MustRegister(ClinicOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(RequestDuration)

	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackAPIRequest measures the duration of an outbound API call
func TrackAPIRequest(backend, operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		APIRequestDuration.With(prometheus.Labels{
			"backend":   backend,
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordAPIRequest records a completed outbound API call
func RecordAPIRequest(backend, operation string, status int) {
	APIRequestCounter.With(prometheus.Labels{
		"backend":   backend,
		"operation": operation,
		"status":    strconv.Itoa(status),
	}).Inc()
}

// RecordClientError records a failed backend interaction by error code
func RecordClientError(backend, code string) {
	ClientErrorCounter.With(prometheus.Labels{"backend": backend, "code": code}).Inc()
}

// RecordSessionOperation records a session operation
func RecordSessionOperation(operation string) {
	SessionOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordClinicOperation records a clinic operation
func RecordClinicOperation(operation string) {
	ClinicOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// MetricsMiddleware creates a middleware function that captures metrics for
// each request handled by the stub server
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
