package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_assignments_total",
			Help: "Count of variant assignments by experiment, variant, and source (new or persisted).",
		},
		[]string{"experiment", "variant", "source"},
	)

	ConfigWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_config_warnings_total",
			Help: "Count of malformed experiment definitions seen by the assigner.",
		},
		[]string{"experiment"},
	)
)

func init() {
	prometheus.MustRegister(AssignmentsTotal, ConfigWarningsTotal)
}
