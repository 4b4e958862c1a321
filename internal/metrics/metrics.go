// Package metrics defines the Prometheus collectors for the gateway.
// Collectors register themselves on import and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartlock"

var (
	// DecisionsTotal counts access decisions by outcome (granted | denied).
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "decisions_total",
			Help:      "Total number of access decisions by outcome",
		},
		[]string{"outcome"},
	)

	// AdminAlertsTotal counts admin alert deliveries by result (sent | failed).
	AdminAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "admin_alerts_total",
			Help:      "Total number of admin alert deliveries by result",
		},
		[]string{"result"},
	)

	// PrunedAttemptsTotal counts audit rows deleted by the retention pruner.
	PrunedAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "pruned_attempts_total",
			Help:      "Total number of audit log rows deleted by retention pruning",
		},
	)
)

// RecordDecision increments the decision counter for the given outcome.
func RecordDecision(granted bool) {
	outcome := "denied"
	if granted {
		outcome = "granted"
	}
	DecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordAlert increments the alert counter for a delivery attempt.
func RecordAlert(sent bool) {
	result := "failed"
	if sent {
		result = "sent"
	}
	AdminAlertsTotal.WithLabelValues(result).Inc()
}
