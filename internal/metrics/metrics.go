package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CeremoniesStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigil_ceremonies_started_total",
		Help: "Number of passkey ceremonies started, by ceremony type.",
	}, []string{"type"})

	CeremoniesCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigil_ceremonies_completed_total",
		Help: "Number of passkey ceremonies completed successfully, by ceremony type.",
	}, []string{"type"})

	CeremoniesFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sigil_ceremonies_failed_total",
		Help: "Number of passkey ceremonies that failed verification, by ceremony type.",
	}, []string{"type"})

	CounterRegressions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sigil_sign_counter_regressions_total",
		Help: "Number of assertions rejected because the sign counter did not increase.",
	})

	SessionsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sigil_sessions_issued_total",
		Help: "Number of sessions issued after successful authentication.",
	})
)

func Init() {
	prometheus.MustRegister(
		CeremoniesStarted,
		CeremoniesCompleted,
		CeremoniesFailed,
		CounterRegressions,
		SessionsIssued,
	)
}
