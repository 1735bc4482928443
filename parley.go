package parley

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/internal/validator"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/tokenizer"
)

// FailureResponse is the scripted reply returned when the model capability
// fails mid-turn.
const FailureResponse = runtime.FailureResponse

// Engine is the high-level entry point for the Parley library. It wraps
// the internal runtime and provides a simplified API for consumers.
type Engine struct {
	mu  sync.RWMutex
	rt  *runtime.Engine
	def *domain.ConversationDefinition

	provider    ports.ModelProvider
	loader      ports.DefinitionLoader
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	metrics     runtime.Metrics
	counter     tokenizer.Counter
	rnd         *rand.Rand
	temperature float64
	maxTokens   int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics installs a metrics recorder for turn outcomes and token use.
func WithMetrics(m runtime.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTokenCounter replaces the default character-based token estimate,
// e.g. with the tiktoken counter.
func WithTokenCounter(c tokenizer.Counter) Option {
	return func(e *Engine) {
		e.counter = c
	}
}

// WithRand injects the random source used for prompt variant selection.
// Useful for deterministic tests.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) {
		e.rnd = rnd
	}
}

// WithTemperature sets the sampling temperature for model calls.
func WithTemperature(t float64) Option {
	return func(e *Engine) {
		e.temperature = t
	}
}

// WithMaxTokens caps the model's output length.
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		e.maxTokens = n
	}
}

// New initializes an Engine for the given conversation definition. The
// provider may be nil; escalations then resolve to FailureResponse.
func New(def *domain.ConversationDefinition, provider ports.ModelProvider, opts ...Option) (*Engine, error) {
	if def == nil {
		return nil, fmt.Errorf("conversation definition is required")
	}

	e := &Engine{
		def:      def,
		provider: provider,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	e.rt = runtime.NewEngine(def, provider, e.runtimeOptions()...)
	return e, nil
}

// NewFromLoader loads the definition through the given loader and builds
// the Engine. The loader is retained so Reload and Watch can refresh the
// definition without restarting.
func NewFromLoader(ctx context.Context, loader ports.DefinitionLoader, provider ports.ModelProvider, opts ...Option) (*Engine, error) {
	def, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation definition: %w", err)
	}

	e, err := New(def, provider, opts...)
	if err != nil {
		return nil, err
	}
	e.loader = loader
	return e, nil
}

func (e *Engine) runtimeOptions() []runtime.EngineOption {
	opts := []runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithMetrics(e.metrics),
		runtime.WithTokenCounter(e.counter),
		runtime.WithRand(e.rnd),
		runtime.WithTemperature(e.temperature),
		runtime.WithMaxTokens(e.maxTokens),
	}
	return opts
}

// Definition returns the current conversation definition.
func (e *Engine) Definition() *domain.ConversationDefinition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.def
}

// StartSession creates a new session positioned at the initial state. An
// empty ID is replaced with a generated UUID.
func (e *Engine) StartSession(sessionID string) *domain.Session {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.NewSession(sessionID, e.def.InitialStateID)
}

// ProcessUtterance runs one turn of the conversation, mutating the session
// in place. Calls for the same session must be serialized by the caller;
// the session.Manager does this for the bundled servers.
func (e *Engine) ProcessUtterance(ctx context.Context, s *domain.Session, utterance string) (*domain.TurnResult, error) {
	e.mu.RLock()
	rt := e.rt
	e.mu.RUnlock()
	return rt.ProcessUtterance(ctx, s, utterance)
}

// Validate checks the definition for structural defects. It returns nil
// when no error-severity findings exist; warnings are logged.
func (e *Engine) Validate() error {
	e.mu.RLock()
	def := e.def
	e.mu.RUnlock()

	var firstErr error
	for _, f := range validator.Validate(def) {
		if f.Severity == validator.SeverityError {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid conversation definition: %s", f.Message)
			}
			e.logger.Error("definition check failed", "finding", f.Message)
		} else {
			e.logger.Warn("definition check", "finding", f.Message)
		}
	}
	return firstErr
}

// Reload refreshes the definition from the loader and swaps the runtime.
// In-flight turns finish against the old definition.
func (e *Engine) Reload(ctx context.Context) error {
	if e.loader == nil {
		return fmt.Errorf("engine was not built from a loader")
	}

	def, err := e.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload conversation definition: %w", err)
	}

	e.mu.Lock()
	e.def = def
	e.rt = runtime.NewEngine(def, e.provider, e.runtimeOptions()...)
	e.mu.Unlock()

	e.logger.Info("conversation definition reloaded", "states", len(def.States))
	return nil
}

// Watch returns a channel that signals when the underlying definition
// changes. Returns an error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}
