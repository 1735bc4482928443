package domain

// TurnResult is the outcome of processing one utterance.
type TurnResult struct {
	// Response is the text to show the user. Never empty: even on model
	// failure the engine answers with a scripted apology.
	Response string `json:"response"`

	// NextStateID is the state the session is in after this turn, or ""
	// when the turn did not resolve to a state (disqualification, model
	// failure).
	NextStateID string `json:"next_state_id,omitempty"`

	// Disqualified marks the conversation as terminated by a
	// disqualification rule. The caller should stop sending turns.
	Disqualified bool `json:"disqualified"`

	// UsedFallback reports whether the generative model produced Response.
	UsedFallback bool `json:"used_fallback"`
}
