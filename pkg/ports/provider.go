package ports

import "context"

// CompletionRequest carries one escalated turn to the generative model.
type CompletionRequest struct {
	// SystemPrompt is the compacted conversation context.
	SystemPrompt string

	// Utterance is the raw user message for this turn.
	Utterance string

	// Temperature and MaxTokens tune the generation. Zero values mean
	// provider defaults.
	Temperature float64
	MaxTokens   int
}

// CompletionResult is the model's reply.
type CompletionResult struct {
	Text string
}

// ModelProvider is the single abstract capability the engine escalates to
// when no deterministic rule resolves an utterance. The engine treats every
// error from this boundary uniformly as a turn-scoped failure; it never
// retries, and callers are expected to enforce their own timeout through
// ctx.
type ModelProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// ModelProviderFunc adapts a function to the ModelProvider interface.
type ModelProviderFunc func(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

// Complete implements ModelProvider.
func (f ModelProviderFunc) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	return f(ctx, req)
}
