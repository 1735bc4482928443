// Package metrics exposes engine counters through Prometheus. It
// implements the runtime's Metrics interface so the core never imports the
// prometheus client directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the Prometheus collectors for one engine instance.
type Recorder struct {
	turns  *prometheus.CounterVec
	tokens *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them on the given
// registerer. Pass prometheus.DefaultRegisterer for the global registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "turns_total",
			Help:      "Turns processed, labeled by outcome.",
		}, []string{"outcome"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "model_tokens_total",
			Help:      "Tokens consumed by model fallback calls, labeled by direction.",
		}, []string{"direction"}),
	}
	reg.MustRegister(r.turns, r.tokens)
	return r
}

// TurnProcessed increments the turn counter for an outcome.
func (r *Recorder) TurnProcessed(outcome string) {
	r.turns.WithLabelValues(outcome).Inc()
}

// TokensConsumed adds the token counts of one fallback call.
func (r *Recorder) TokensConsumed(input, output int) {
	r.tokens.WithLabelValues("input").Add(float64(input))
	r.tokens.WithLabelValues("output").Add(float64(output))
}
