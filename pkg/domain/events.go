package domain

import (
	"context"
	"time"
)

// TurnEvent is emitted once per processed utterance, whatever the outcome.
type TurnEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	StateID   string    `json:"state_id"`
	Outcome   string    `json:"outcome"`
}

// TransitionEvent is emitted when a session moves to a new state.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason"`
}

// FallbackEvent is emitted when a turn escalates to the generative model.
type FallbackEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	SessionID    string    `json:"session_id"`
	StateID      string    `json:"state_id"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Failed       bool      `json:"failed,omitempty"`
}

// DisqualifyEvent is emitted when a disqualification rule terminates the
// conversation.
type DisqualifyEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	StateID   string    `json:"state_id"`
	Condition string    `json:"condition"`
}

// LifecycleHooks defines callbacks for engine observability. All fields are
// optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnTurn       func(context.Context, *TurnEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnFallback   func(context.Context, *FallbackEvent)
	OnDisqualify func(context.Context, *DisqualifyEvent)
}
