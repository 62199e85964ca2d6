package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobhunt",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Metrics records request counts and latency. routePattern maps a request to
// its route template so ids do not explode label cardinality.
func Metrics(routePattern func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newStatusWriter(w)
			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
				route := routePattern(r)
				requestDuration.WithLabelValues(r.Method, route).Observe(seconds)
				requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
			}))
			defer timer.ObserveDuration()
			next.ServeHTTP(rw, r)
		})
	}
}
