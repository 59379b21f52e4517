package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session lifecycle metrics
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradutor_sessions_active",
			Help: "Number of live translation sessions",
		},
	)

	sessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradutor_sessions_created_total",
			Help: "Total number of translation sessions created",
		},
	)

	// Orchestration metrics
	debounceSubmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradutor_debounce_submits_total",
			Help: "Debounce timer firings by what the submission did",
		},
		[]string{"result"},
	)

	detectionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradutor_detection_outcomes_total",
			Help: "Language reconciliation outcomes after successful translations",
		},
		[]string{"outcome"},
	)

	staleResponsesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradutor_stale_responses_dropped_total",
			Help: "Translation responses discarded because a newer submission superseded them",
		},
	)
)

// Submission result label values for debounceSubmitsTotal.
const (
	submitResultTranslated = "translated"
	submitResultEmpty      = "empty"
	submitResultSuperseded = "superseded"
)
