package runtime

import (
	"log/slog"
	"math/rand"

	"github.com/aretw0/parley/pkg/domain"
)

// NextState resolves the first transition of the session's current state
// whose condition matches the utterance. On a match it records the
// transition and advances the session; otherwise it returns false and
// leaves the session untouched.
//
// A matching transition pointing at a state missing from the definition is
// skipped: dangling targets are a configuration defect, and advancing would
// break the invariant that CurrentStateID is always a valid key.
func NextState(def *domain.ConversationDefinition, s *domain.Session, utterance string, logger *slog.Logger) (string, bool) {
	state, ok := def.State(s.CurrentStateID)
	if !ok {
		return "", false
	}

	for _, t := range state.Transitions {
		if !Matches(utterance, t.Condition) {
			continue
		}
		if _, exists := def.State(t.TargetStateID); !exists {
			if logger != nil {
				logger.Warn("transition targets unknown state",
					"from", state.ID,
					"to", t.TargetStateID,
					"condition", t.Condition,
				)
			}
			continue
		}
		recordTransition(s, state.ID, t.TargetStateID, t.Condition)
		return t.TargetStateID, true
	}
	return "", false
}

func recordTransition(s *domain.Session, from, to, reason string) {
	s.Transitions = append(s.Transitions, domain.TransitionEntry{
		From:   from,
		To:     to,
		Reason: reason,
	})
	s.CurrentStateID = to
}

// NextPrompt returns the prompt for a state. When variants are declared it
// picks uniformly at random from the primary prompt and all variants.
func NextPrompt(rnd *rand.Rand, state domain.StateDefinition) string {
	if len(state.PromptVariants) == 0 {
		return state.Prompt
	}
	pool := make([]string, 0, len(state.PromptVariants)+1)
	pool = append(pool, state.Prompt)
	pool = append(pool, state.PromptVariants...)
	return pool[rnd.Intn(len(pool))]
}
