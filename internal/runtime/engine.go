package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/tokenizer"
)

// FailureResponse is the scripted reply used when the model capability
// fails. The turn ends cleanly and the session state is unchanged, so the
// same state can be retried next turn.
const FailureResponse = "I'm sorry, I'm having trouble answering that right now. Could you try again in a moment?"

// Turn outcome labels, used for hooks, logs and metrics.
const (
	OutcomeKnowledge     = "knowledge"
	OutcomeDisqualified  = "disqualified"
	OutcomeTransition    = "transition"
	OutcomeFallback      = "fallback"
	OutcomeFallbackError = "fallback_error"
)

// Metrics is the narrow recording interface the engine emits into. The
// prometheus implementation lives in internal/metrics; a nil-safe no-op is
// installed by default so the core carries no metrics dependency.
type Metrics interface {
	TurnProcessed(outcome string)
	TokensConsumed(input, output int)
}

type nopMetrics struct{}

func (nopMetrics) TurnProcessed(string)    {}
func (nopMetrics) TokensConsumed(int, int) {}

// Engine is the dialogue orchestrator: it composes the knowledge resolver,
// disqualification filter, state machine and fallback path into the single
// ProcessUtterance entry point.
type Engine struct {
	def      *domain.ConversationDefinition
	provider ports.ModelProvider

	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	metrics Metrics
	counter tokenizer.Counter
	rates   RateTable
	rnd     *rand.Rand

	temperature float64
	maxTokens   int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTokenCounter replaces the default character-length token estimate.
func WithTokenCounter(c tokenizer.Counter) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.counter = c
		}
	}
}

// WithRates overrides the cost rate table.
func WithRates(t RateTable) EngineOption {
	return func(e *Engine) { e.rates = t }
}

// WithRand injects the random source used for prompt variant selection.
func WithRand(rnd *rand.Rand) EngineOption {
	return func(e *Engine) {
		if rnd != nil {
			e.rnd = rnd
		}
	}
}

// WithTemperature sets the sampling temperature for model calls.
func WithTemperature(t float64) EngineOption {
	return func(e *Engine) { e.temperature = t }
}

// WithMaxTokens caps the model's output length.
func WithMaxTokens(n int) EngineOption {
	return func(e *Engine) { e.maxTokens = n }
}

// NewEngine creates the orchestrator for one conversation definition. The
// definition is read-only; provider may be nil, in which case every
// escalation resolves to the scripted failure response.
func NewEngine(def *domain.ConversationDefinition, provider ports.ModelProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		def:      def,
		provider: provider,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		metrics:  nopMetrics{},
		counter:  tokenizer.Estimate{},
		rates:    DefaultRates(),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Definition returns the read-only conversation definition.
func (e *Engine) Definition() *domain.ConversationDefinition {
	return e.def
}

// ProcessUtterance runs one full turn against the session. Turn order:
// knowledge base, disqualification, response recording, deterministic
// transition, and finally model escalation. The session is mutated in
// place; calls against the same session must be serialized by the caller.
//
// Every path returns a response. Model failures yield FailureResponse with
// a nil error so the turn still ends cleanly.
func (e *Engine) ProcessUtterance(ctx context.Context, s *domain.Session, utterance string) (*domain.TurnResult, error) {
	if s == nil {
		return nil, fmt.Errorf("nil session")
	}

	// 1. FAQ short-circuit, independent of conversation state. Runs before
	// disqualification so a disqualifying phrase quoted inside a question
	// cannot preempt the answer.
	if answer, ok := ResolveKnowledge(e.def.Knowledge, s.Facts, utterance); ok {
		e.logger.Debug("knowledge base hit", "session", s.ID, "state", s.CurrentStateID)
		e.turnDone(ctx, s, OutcomeKnowledge)
		s.LastUsedFallback = false
		return &domain.TurnResult{
			Response:    answer,
			NextStateID: s.CurrentStateID,
		}, nil
	}

	// 2. Disqualification.
	if rule, ok := Disqualify(e.def.Disqualifiers, utterance); ok {
		e.logger.Info("conversation disqualified", "session", s.ID, "condition", rule.Condition)
		e.turnDone(ctx, s, OutcomeDisqualified)
		e.emitDisqualify(ctx, s, rule.Condition)
		s.LastUsedFallback = false
		return &domain.TurnResult{
			Response:     rule.Message,
			Disqualified: true,
		}, nil
	}

	state, ok := e.def.State(s.CurrentStateID)
	if !ok {
		return nil, fmt.Errorf("session %s: state %q: %w", s.ID, s.CurrentStateID, domain.ErrUnknownState)
	}

	// 3. Remember the raw response and any extractable fact.
	RecordResponse(s, state, utterance, true)

	// 4. Deterministic transition.
	if target, ok := NextState(e.def, s, utterance, e.logger); ok {
		e.turnDone(ctx, s, OutcomeTransition)
		e.emitTransition(ctx, s, state.ID, target, utterance)
		s.LastUsedFallback = false
		next, _ := e.def.State(target)
		return &domain.TurnResult{
			Response:    NextPrompt(e.rnd, next),
			NextStateID: target,
		}, nil
	}

	// 5. Nothing deterministic matched: escalate to the model.
	return e.escalate(ctx, s, state, utterance)
}

func (e *Engine) escalate(ctx context.Context, s *domain.Session, state domain.StateDefinition, utterance string) (*domain.TurnResult, error) {
	prompt := BuildPrompt(e.def.Identity, state, s)
	s.LastPrompt = prompt

	if e.provider == nil {
		e.logger.Warn("escalation without model provider", "session", s.ID, "state", state.ID)
		e.turnDone(ctx, s, OutcomeFallbackError)
		s.LastUsedFallback = false
		return &domain.TurnResult{Response: FailureResponse}, nil
	}

	res, err := e.provider.Complete(ctx, ports.CompletionRequest{
		SystemPrompt: prompt,
		Utterance:    utterance,
		Temperature:  e.temperature,
		MaxTokens:    e.maxTokens,
	})
	if err != nil {
		// Failure is reported, not retried; the session keeps its state so
		// the same turn can be attempted again.
		e.logger.Error("model invocation failed", "session", s.ID, "state", state.ID, "err", err)
		e.turnDone(ctx, s, OutcomeFallbackError)
		e.emitFallback(ctx, s, state.ID, 0, 0, true)
		s.LastUsedFallback = false
		return &domain.TurnResult{Response: FailureResponse}, nil
	}

	inputTokens := e.counter.Count(prompt) + e.counter.Count(utterance)
	outputTokens := e.counter.Count(res.Text)
	UpdateTokenUsage(s, e.def.Identity.Model, inputTokens, outputTokens, e.rates)
	e.metrics.TokensConsumed(inputTokens, outputTokens)

	reply := collapseRuns(res.Text)

	// Try to recover a deterministic next state: first by re-matching the
	// original utterance, then by scanning the reply for a mention of a
	// target state's display name.
	if target, ok := NextState(e.def, s, utterance, e.logger); ok {
		e.emitTransition(ctx, s, state.ID, target, utterance)
	} else if target, ok := e.inferStateFromReply(state, reply); ok {
		recordTransition(s, state.ID, target, "mentioned in model reply")
		e.emitTransition(ctx, s, state.ID, target, "model reply")
	}

	s.LastUsedFallback = true
	e.turnDone(ctx, s, OutcomeFallback)
	e.emitFallback(ctx, s, state.ID, inputTokens, outputTokens, false)

	return &domain.TurnResult{
		Response:     reply,
		NextStateID:  s.CurrentStateID,
		UsedFallback: true,
	}, nil
}

// inferStateFromReply scans the current state's transition targets for a
// display name mentioned, case-insensitively, inside the model's reply.
func (e *Engine) inferStateFromReply(state domain.StateDefinition, reply string) (string, bool) {
	lowered := strings.ToLower(reply)
	for _, t := range state.Transitions {
		target, ok := e.def.State(t.TargetStateID)
		if !ok || target.Name == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(target.Name)) {
			return target.ID, true
		}
	}
	return "", false
}

// collapseRuns shrinks any run of three or more identical consecutive
// characters down to two. This repairs a known duplication artifact in
// model output without damaging legitimate double letters.
func collapseRuns(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// turnDone records the turn outcome in the metrics and fires the OnTurn
// hook. Called exactly once per ProcessUtterance path.
func (e *Engine) turnDone(ctx context.Context, s *domain.Session, outcome string) {
	e.metrics.TurnProcessed(outcome)
	if e.hooks.OnTurn == nil {
		return
	}
	e.hooks.OnTurn(ctx, &domain.TurnEvent{
		Timestamp: time.Now().UTC(),
		SessionID: s.ID,
		StateID:   s.CurrentStateID,
		Outcome:   outcome,
	})
}

func (e *Engine) emitTransition(ctx context.Context, s *domain.Session, from, to, reason string) {
	if e.hooks.OnTransition == nil {
		return
	}
	e.hooks.OnTransition(ctx, &domain.TransitionEvent{
		Timestamp: time.Now().UTC(),
		SessionID: s.ID,
		From:      from,
		To:        to,
		Reason:    reason,
	})
}

func (e *Engine) emitFallback(ctx context.Context, s *domain.Session, stateID string, in, out int, failed bool) {
	if e.hooks.OnFallback == nil {
		return
	}
	e.hooks.OnFallback(ctx, &domain.FallbackEvent{
		Timestamp:    time.Now().UTC(),
		SessionID:    s.ID,
		StateID:      stateID,
		InputTokens:  in,
		OutputTokens: out,
		Failed:       failed,
	})
}

func (e *Engine) emitDisqualify(ctx context.Context, s *domain.Session, condition string) {
	if e.hooks.OnDisqualify == nil {
		return
	}
	e.hooks.OnDisqualify(ctx, &domain.DisqualifyEvent{
		Timestamp: time.Now().UTC(),
		SessionID: s.ID,
		StateID:   s.CurrentStateID,
		Condition: condition,
	})
}
