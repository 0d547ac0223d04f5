package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_requests_in_flight",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_errors_total",
			Help: "Total number of domain errors by category and code",
		},
		[]string{"category", "code", "status"},
	)

	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP errors by status code",
		},
		[]string{"status", "path", "method"},
	)
)
