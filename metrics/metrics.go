// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelist_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinelist_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinelist_http_requests_in_flight",
			Help: "Requests currently being served",
		},
	)

	DBConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinelist_db_connected",
			Help: "1 when the document store connection is healthy",
		},
	)

	DBConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelist_db_connect_attempts_total",
			Help: "Connection attempts by result",
		},
		[]string{"result"},
	)

	// UserMutations counts watchlist and review writes by operation and outcome.
	UserMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelist_user_mutations_total",
			Help: "Watchlist/review/profile mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelist_auth_attempts_total",
			Help: "Register/login attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinelist_catalog_requests_total",
			Help: "Catalog gateway upstream calls by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinelist_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func SetDBConnected(ok bool) {
	if ok {
		DBConnected.Set(1)
		return
	}
	DBConnected.Set(0)
}

// Outcome turns an error into a low-cardinality label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
