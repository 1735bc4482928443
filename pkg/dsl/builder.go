package dsl

import (
	"fmt"

	"github.com/aretw0/parley/internal/validator"
	"github.com/aretw0/parley/pkg/domain"
)

// Builder assembles a conversation definition programmatically.
type Builder struct {
	def *domain.ConversationDefinition
}

// New creates a builder whose conversation starts at initialStateID.
func New(initialStateID string) *Builder {
	return &Builder{
		def: &domain.ConversationDefinition{
			InitialStateID: initialStateID,
			States:         make(map[string]domain.StateDefinition),
		},
	}
}

// Identity sets the business persona used for model prompts.
func (b *Builder) Identity(businessName, role, tone, model string) *Builder {
	b.def.Identity = domain.Identity{
		BusinessName: businessName,
		Role:         role,
		Tone:         tone,
		Model:        model,
	}
	return b
}

// Disqualify appends a disqualification rule.
func (b *Builder) Disqualify(condition, message string) *Builder {
	b.def.Disqualifiers = append(b.def.Disqualifiers, domain.DisqualificationRule{
		Condition: condition,
		Message:   message,
	})
	return b
}

// Know appends a knowledge base entry.
func (b *Builder) Know(pattern, answer string) *Builder {
	b.def.Knowledge = append(b.def.Knowledge, domain.KnowledgeItem{
		Pattern: pattern,
		Answer:  answer,
	})
	return b
}

// State creates (or returns) the builder for a state.
func (b *Builder) State(id string) *StateBuilder {
	if _, ok := b.def.States[id]; !ok {
		b.def.States[id] = domain.StateDefinition{ID: id}
	}
	return &StateBuilder{id: id, builder: b}
}

// Build validates the definition and returns it. Warnings are tolerated;
// structural errors (missing initial state, dangling transitions) fail.
func (b *Builder) Build() (*domain.ConversationDefinition, error) {
	for _, f := range validator.Validate(b.def) {
		if f.Severity == validator.SeverityError {
			return nil, fmt.Errorf("invalid definition: %s", f.Message)
		}
	}
	return b.def, nil
}

// StateBuilder configures a single state. Mutations write through to the
// parent builder immediately.
type StateBuilder struct {
	id      string
	builder *Builder
}

func (sb *StateBuilder) update(fn func(*domain.StateDefinition)) *StateBuilder {
	state := sb.builder.def.States[sb.id]
	fn(&state)
	sb.builder.def.States[sb.id] = state
	return sb
}

// Name sets the display name, used for fallback state inference.
func (sb *StateBuilder) Name(name string) *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) { s.Name = name })
}

// Prompt sets the scripted reply issued when the state is entered.
func (sb *StateBuilder) Prompt(prompt string) *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) { s.Prompt = prompt })
}

// Variants adds alternative prompt phrasings.
func (sb *StateBuilder) Variants(variants ...string) *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) {
		s.PromptVariants = append(s.PromptVariants, variants...)
	})
}

// Expect hints the category of answer this state collects.
func (sb *StateBuilder) Expect(input string) *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) { s.ExpectedInput = input })
}

// Keywords hints the keywords the transitions listen for.
func (sb *StateBuilder) Keywords(keywords string) *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) { s.ExpectedKeywords = keywords })
}

// On appends a transition evaluated in declaration order.
func (sb *StateBuilder) On(condition, targetStateID string) *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) {
		s.Transitions = append(s.Transitions, domain.Transition{
			Condition:     condition,
			TargetStateID: targetStateID,
		})
	})
}

// Terminal marks the state as a sink.
func (sb *StateBuilder) Terminal() *StateBuilder {
	return sb.update(func(s *domain.StateDefinition) { s.Terminal = true })
}

// State jumps to another state's builder, enabling fluent chains.
func (sb *StateBuilder) State(id string) *StateBuilder {
	return sb.builder.State(id)
}

// Build delegates to the parent builder.
func (sb *StateBuilder) Build() (*domain.ConversationDefinition, error) {
	return sb.builder.Build()
}
