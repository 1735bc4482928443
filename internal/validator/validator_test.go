package validator

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func validDefinition() *domain.ConversationDefinition {
	return &domain.ConversationDefinition{
		InitialStateID: "start",
		States: map[string]domain.StateDefinition{
			"start": {
				ID:     "start",
				Prompt: "Hello",
				Transitions: []domain.Transition{
					{Condition: "any", TargetStateID: "end"},
				},
			},
			"end": {ID: "end", Prompt: "Bye", Terminal: true},
		},
	}
}

func TestValidateClean(t *testing.T) {
	assert.Empty(t, Validate(validDefinition()))
}

func TestValidateMissingInitialState(t *testing.T) {
	def := validDefinition()
	def.InitialStateID = "ghost"

	findings := Validate(def)
	assert.NotEmpty(t, findings)
	assert.Equal(t, SeverityError, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "ghost")
}

func TestValidateDanglingTransition(t *testing.T) {
	def := validDefinition()
	state := def.States["start"]
	state.Transitions = append(state.Transitions, domain.Transition{
		Condition: "contains:x", TargetStateID: "missing",
	})
	def.States["start"] = state

	findings := Validate(def)
	var found bool
	for _, f := range findings {
		if f.Severity == SeverityError && f.Message == `state "start" transition 1 targets unknown state "missing"` {
			found = true
		}
	}
	assert.True(t, found, "expected dangling target finding, got %v", findings)
}

func TestValidateUnreachableState(t *testing.T) {
	def := validDefinition()
	def.States["island"] = domain.StateDefinition{ID: "island", Prompt: "?"}

	findings := Validate(def)
	var found bool
	for _, f := range findings {
		if f.Message == `state "island" is unreachable from the initial state` {
			found = true
		}
	}
	assert.True(t, found, "expected unreachable finding, got %v", findings)
}

func TestValidateEmptyBits(t *testing.T) {
	def := validDefinition()
	def.Disqualifiers = []domain.DisqualificationRule{{Condition: "", Message: ""}}
	def.Knowledge = []domain.KnowledgeItem{{Pattern: "", Answer: "a"}}

	findings := Validate(def)
	assert.Len(t, findings, 3)
	for _, f := range findings {
		assert.Equal(t, SeverityWarning, f.Severity)
	}
}

func TestValidateErrorsSortFirst(t *testing.T) {
	def := validDefinition()
	def.Knowledge = []domain.KnowledgeItem{{Pattern: "", Answer: "a"}}
	state := def.States["start"]
	state.Transitions = []domain.Transition{{Condition: "any", TargetStateID: "gone"}}
	def.States["start"] = state

	findings := Validate(def)
	assert.GreaterOrEqual(t, len(findings), 2)
	assert.Equal(t, SeverityError, findings[0].Severity)
}
