package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	callbackRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_requests_total",
			Help: "Total number of callback requests handled",
		},
		[]string{"endpoint", "status"},
	)

	callbackRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "callback_request_duration_seconds",
			Help:    "Duration of callback request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	callbackSlowRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_slow_requests_total",
			Help: "Callback requests that exceeded the latency budget",
		},
		[]string{"endpoint"},
	)
)

// ObserveCallback records one handled callback request.
func ObserveCallback(endpoint string, status int, elapsed time.Duration) {
	callbackRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	callbackRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// IncSlowCallback counts a request that blew the latency budget.
func IncSlowCallback(endpoint string) {
	callbackSlowRequestsTotal.WithLabelValues(endpoint).Inc()
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
