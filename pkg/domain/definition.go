package domain

// ConversationDefinition is the immutable configuration of a conversation
// flow. It is produced by external authoring tooling and loaded by an
// adapter; the engine treats it as read-only.
type ConversationDefinition struct {
	// InitialStateID is where new sessions begin. It must be a key of States.
	InitialStateID string `json:"initial_state_id" yaml:"initial_state"`

	// States maps state IDs to their definitions. Keys are unique by
	// construction of the map.
	States map[string]StateDefinition `json:"states" yaml:"states"`

	// Disqualifiers are evaluated in order on every turn; the first match
	// terminates the conversation with its message.
	Disqualifiers []DisqualificationRule `json:"disqualifiers,omitempty" yaml:"disqualifiers,omitempty"`

	// Knowledge holds state-independent FAQ entries, evaluated in order.
	Knowledge []KnowledgeItem `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`

	// Identity describes the business persona used when building prompts
	// for the generative model.
	Identity Identity `json:"identity,omitempty" yaml:"identity,omitempty"`
}

// State returns the definition for the given state ID.
func (d *ConversationDefinition) State(id string) (StateDefinition, bool) {
	s, ok := d.States[id]
	return s, ok
}

// StateDefinition is a single node in the conversation flow.
type StateDefinition struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Prompt is what the engine answers with when this state is entered.
	Prompt string `json:"prompt" yaml:"prompt"`

	// PromptVariants are alternative phrasings. When present, the engine
	// picks uniformly from [Prompt, PromptVariants...].
	PromptVariants []string `json:"prompt_variants,omitempty" yaml:"prompt_variants,omitempty"`

	// ExpectedInput hints at the category of answer this state collects
	// (e.g. "name", "email", "reason or objection"). It drives fact
	// extraction and the fallback policy.
	ExpectedInput string `json:"expected_input,omitempty" yaml:"expected_input,omitempty"`

	// ExpectedKeywords hints at keywords the transitions listen for.
	ExpectedKeywords string `json:"expected_keywords,omitempty" yaml:"expected_keywords,omitempty"`

	// Transitions are evaluated in order; the first matching condition wins.
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`

	// Terminal marks a sink state.
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Transition is a (condition, target) pair attached to a state.
type Transition struct {
	// Condition is evaluated against the user utterance. See the matcher
	// for the supported forms ("any", comma alternation, contains:, regex).
	Condition string `json:"condition" yaml:"condition"`

	// TargetStateID should exist in the definition's state map. Dangling
	// targets are a configuration defect reported by the validator, not a
	// runtime crash.
	TargetStateID string `json:"target_state_id" yaml:"to"`
}

// DisqualificationRule terminates the conversation when its condition
// matches an utterance.
type DisqualificationRule struct {
	Condition string `json:"condition" yaml:"condition"`
	Message   string `json:"message" yaml:"message"`
}

// KnowledgeItem is a state-independent FAQ entry. The answer may contain
// {variableName} placeholders interpolated from the session's facts.
type KnowledgeItem struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Answer  string `json:"answer" yaml:"answer"`
}

// Identity carries the business persona fields rendered into the system
// prompt. Model selects the per-1000-token rate family for cost accounting.
type Identity struct {
	BusinessName string `json:"business_name,omitempty" yaml:"business_name,omitempty"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Tone         string `json:"tone,omitempty" yaml:"tone,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
}
