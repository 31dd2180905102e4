// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Save kinds.
const (
	SaveIntermediate = "intermediate"
	SaveFinal        = "final"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions started",
		},
	)

	SessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Total number of quiz sessions completed",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_sessions_active",
			Help: "Quiz sessions currently held in memory",
		},
	)

	AnswersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_submitted_total",
			Help: "Accepted answer submissions",
		},
		[]string{"type", "correct"},
	)

	ProgressSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_saves_total",
			Help: "Progress snapshot saves",
		},
		[]string{"kind", "status"}, // kind: intermediate/final, status: success/failure
	)

	ProgressSaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progress_save_duration_seconds",
			Help:    "Time spent persisting progress snapshots",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ActivityEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_activity_events_total",
			Help: "Learning activity milestones recorded",
		},
		[]string{"action"},
	)
)

// Status renders an error as a status label.
func Status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
