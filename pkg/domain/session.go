package domain

import "time"

// Session is the mutable snapshot of one active conversation. It is
// mutated exclusively by the engine during ProcessUtterance; callers must
// serialize turns against the same session themselves (the engine holds no
// internal lock).
type Session struct {
	// ID identifies the session for stores and transports.
	ID string `json:"id"`

	// CurrentStateID is always a key of the definition's state map.
	CurrentStateID string `json:"current_state_id"`

	// Facts holds contextual values extracted from user responses, keyed
	// by derived names like "userEmail". Last write wins; history lives in
	// Responses only.
	Facts map[string]string `json:"facts"`

	// Responses is the append-only log of raw user responses.
	Responses []ResponseEntry `json:"responses"`

	// Transitions is the append-only log of state changes. Unbounded, but
	// only a bounded suffix is ever read for prompting.
	Transitions []TransitionEntry `json:"transitions"`

	// Usage accumulates token counts and estimated cost for model calls.
	// Monotonically non-decreasing.
	Usage TokenUsage `json:"usage"`

	// LastUsedFallback reports whether the previous turn was resolved by
	// the generative model.
	LastUsedFallback bool `json:"last_used_fallback"`

	// LastPrompt is the last system prompt sent to the model.
	LastPrompt string `json:"last_prompt,omitempty"`
}

// ResponseEntry records a single user response.
type ResponseEntry struct {
	StateID   string    `json:"state_id"`
	Value     string    `json:"value"`
	Valid     bool      `json:"valid"`
	Timestamp time.Time `json:"timestamp"`
}

// TransitionEntry records a state change and the condition that caused it.
// From == To entries annotate in-place activity such as fact updates.
type TransitionEntry struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// TokenUsage tracks cumulative token consumption for one session.
type TokenUsage struct {
	InputTokens      int     `json:"input_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// NewSession creates a clean session starting at the given state.
func NewSession(id, initialStateID string) *Session {
	return &Session{
		ID:             id,
		CurrentStateID: initialStateID,
		Facts:          make(map[string]string),
	}
}

// TransitionCount returns the number of recorded transition entries.
func (s *Session) TransitionCount() int {
	return len(s.Transitions)
}

// Clone returns a deep copy, used by stores to isolate persisted snapshots
// from the live session the engine keeps mutating.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Facts = make(map[string]string, len(s.Facts))
	for k, v := range s.Facts {
		out.Facts[k] = v
	}
	out.Responses = append([]ResponseEntry(nil), s.Responses...)
	out.Transitions = append([]TransitionEntry(nil), s.Transitions...)
	return &out
}
