package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.TurnProcessed("transition")
	r.TurnProcessed("transition")
	r.TurnProcessed("fallback")
	r.TokensConsumed(40, 10)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.turns.WithLabelValues("transition")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.turns.WithLabelValues("fallback")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.tokens.WithLabelValues("input")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.tokens.WithLabelValues("output")))
}
