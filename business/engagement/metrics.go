package engagement

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_actions_total",
			Help: "Count of recorded engagement actions by action name; unknown actions share one label.",
		},
		[]string{"action"},
	)

	ThresholdsFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_thresholds_fired_total",
			Help: "Count of threshold effects fired by threshold and effect name.",
		},
		[]string{"threshold", "effect"},
	)

	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "engagement_sessions_active",
		Help: "Number of live scorer sessions held in memory.",
	})
)

func init() {
	prometheus.MustRegister(ActionsTotal, ThresholdsFiredTotal, SessionsActive)
}
