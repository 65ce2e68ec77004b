// Package metrics provides Prometheus metrics for the assistant.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jansevak/jansevak-be/internal/assistant"
	"github.com/jansevak/jansevak-be/internal/circuitbreaker"
)

var (
	// AnswersTotal counts answered prompts by channel and outcome.
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jansevak",
			Name:      "assistant_answers_total",
			Help:      "Total number of answered prompts",
		},
		[]string{"channel", "outcome"},
	)

	// AnswerDuration measures time to produce an answer.
	AnswerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jansevak",
			Name:      "assistant_answer_duration_seconds",
			Help:      "Duration of assistant answers in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5, 10, 30},
		},
		[]string{"channel", "outcome"},
	)

	// WSConnections tracks open chatbot WebSocket connections.
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jansevak",
			Name:      "ws_connections",
			Help:      "Number of open chatbot WebSocket connections",
		},
	)

	// BreakerState tracks the completion circuit breaker (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jansevak",
			Name:      "completion_breaker_state",
			Help:      "Completion circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		},
	)
)

// Recorder implements assistant.Recorder on the package metrics
type Recorder struct{}

var _ assistant.Recorder = Recorder{}

// RecordInteraction records one answered prompt.
func (Recorder) RecordInteraction(_ context.Context, in assistant.Interaction) error {
	RecordAnswer(string(in.Channel), string(in.Outcome), in.Latency.Seconds())
	return nil
}

// RecordAnswer records an answer outcome and its duration.
func RecordAnswer(channel, outcome string, duration float64) {
	AnswersTotal.WithLabelValues(channel, outcome).Inc()
	AnswerDuration.WithLabelValues(channel, outcome).Observe(duration)
}

// ObserveBreaker is a circuitbreaker.Config.OnStateChange hook.
func ObserveBreaker(_, to circuitbreaker.State) {
	BreakerState.Set(float64(to))
}
