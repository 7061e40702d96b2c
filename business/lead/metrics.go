package lead

import "github.com/prometheus/client_golang/prometheus"

var (
	CapturedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_captured_total",
			Help: "Captured leads by rating.",
		},
		[]string{"rating"},
	)

	CRMPushErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_crm_push_errors_total",
			Help: "Failed lead pushes per CRM sink.",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(CapturedTotal, CRMPushErrorsTotal)
}
