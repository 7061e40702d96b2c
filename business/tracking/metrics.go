package tracking

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_events_total",
			Help: "Tracking events by event name and outcome (queued, dropped, no_consent, delivered, failed).",
		},
		[]string{"event", "outcome"},
	)

	BackendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_backend_errors_total",
			Help: "Failed deliveries per tracking backend.",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal, BackendErrorsTotal)
}
