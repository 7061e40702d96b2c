package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of every HTTP handler, labelled by route template
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// Total number of requests answered with a 5xx status
	HTTPServerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_errors_total",
		Help: "Total number of requests answered with a 5xx status",
	}, []string{"route"})
)

func Init() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPServerErrors,
	)
}
