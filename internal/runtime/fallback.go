package runtime

import (
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// openEndedHints mark expected-input categories that need generative
// handling regardless of declared transitions.
var openEndedHints = []string{"reason", "objection", "explanation", "description", "feedback"}

// ShouldEscalate decides whether the generative model must be invoked for
// an utterance, or whether deterministic resolution suffices. Rules are
// evaluated in order; the first applicable one wins:
//
//  1. A question (ends with "?", longer than 10 characters) about a fact
//     the session already knows is answerable from memory; an unrelated
//     question escalates.
//  2. A state with no transitions has nothing deterministic to offer.
//  3. Open-ended input categories always escalate.
//  4. "any"-hinted states prefer a literal "any" transition, then any
//     matching transition, then escalate.
//  5. Otherwise escalate only when no transition matches.
//
// Engine.ProcessUtterance realizes this policy implicitly through its step
// order (knowledge, disqualification, deterministic transition, then
// escalation); ShouldEscalate states it as a single predicate so the policy
// can be tested and reasoned about on its own.
func ShouldEscalate(state domain.StateDefinition, utterance string, facts map[string]string) bool {
	trimmed := strings.TrimSpace(utterance)

	if strings.HasSuffix(trimmed, "?") && len(trimmed) > 10 {
		return !asksAboutKnownFact(trimmed, facts)
	}

	if len(state.Transitions) == 0 {
		return true
	}

	hint := strings.ToLower(state.ExpectedInput)
	for _, open := range openEndedHints {
		if strings.Contains(hint, open) {
			return true
		}
	}

	if hintsAny(state.ExpectedInput) || hintsAny(state.ExpectedKeywords) {
		for _, t := range state.Transitions {
			if strings.EqualFold(strings.TrimSpace(t.Condition), "any") {
				return false
			}
		}
		return !anyTransitionMatches(state, utterance)
	}

	return !anyTransitionMatches(state, utterance)
}

// asksAboutKnownFact scans the contextual facts, skipping business-identity
// fields, for a key whose derived topic appears in the utterance.
func asksAboutKnownFact(utterance string, facts map[string]string) bool {
	lowered := strings.ToLower(utterance)
	for key := range facts {
		if isIdentityFact(key) {
			continue
		}
		topic := factTopic(key)
		if topic != "" && strings.Contains(lowered, topic) {
			return true
		}
	}
	return false
}

// factTopic derives the human topic word from a fact key: "userEmail"
// becomes "email".
func factTopic(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, "user"))
}

// isIdentityFact reports whether a fact key belongs to the business
// identity rather than to data collected from the user.
func isIdentityFact(key string) bool {
	return strings.HasPrefix(strings.ToLower(key), "business")
}

func hintsAny(hint string) bool {
	return strings.Contains(strings.ToLower(hint), "any")
}

func anyTransitionMatches(state domain.StateDefinition, utterance string) bool {
	for _, t := range state.Transitions {
		if Matches(utterance, t.Condition) {
			return true
		}
	}
	return false
}
