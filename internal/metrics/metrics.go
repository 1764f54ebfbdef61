// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weather_history",
		Name:      "upstream_requests_total",
		Help:      "Historical weather API calls by outcome.",
	}, []string{"outcome"})

	WeatherRecordsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weather_history",
		Name:      "weather_records_inserted_total",
		Help:      "Weather days newly stored by ingestion.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weather_history",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weather_history",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveUpstream records the outcome of one upstream call.
func ObserveUpstream(err error) {
	if err != nil {
		UpstreamRequests.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	UpstreamRequests.WithLabelValues(OutcomeSuccess).Inc()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
