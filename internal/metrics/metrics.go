package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
)

// Collectors stay nil until Init runs; the record helpers below are no-ops
// in that state so service code can run without a metrics registry (tests).
var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ResourceOperationsCounter *prometheus.CounterVec

	AuthorizationDeniedCounter *prometheus.CounterVec

	DBOperationDuration *prometheus.HistogramVec
)

// Init registers the Prometheus collectors under the configured prefix
func Init(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ResourceOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_resource_operations_total",
			Help: "Total number of resource operations by kind",
		},
		[]string{"kind", "operation"},
	)

	AuthorizationDeniedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_authorization_denied_total",
			Help: "Total number of denied authorization checks",
		},
		[]string{"permission"},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// TrackHTTPRequest records one completed request
func TrackHTTPRequest(method, path, status string, duration float64) {
	if HTTPRequestsTotal == nil {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DBOperationDuration == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordResourceOperation increments the counter for resource operations
func RecordResourceOperation(kind, operation string) {
	if ResourceOperationsCounter == nil {
		return
	}
	ResourceOperationsCounter.WithLabelValues(kind, operation).Inc()
}

// RecordAuthorizationDenied increments the counter for denied checks
func RecordAuthorizationDenied(permission string) {
	if AuthorizationDeniedCounter == nil {
		return
	}
	AuthorizationDeniedCounter.WithLabelValues(permission).Inc()
}
