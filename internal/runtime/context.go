package runtime

import (
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/parley/pkg/domain"
)

const (
	relevantResponseLimit  = 7
	recentTransitionLimit  = 5
	factUpdateReasonPrefix = "form data update"
)

// factCategories maps expected-input hint keywords to the canonical fact
// key suffix. First hit wins, in this order.
var factCategories = []struct {
	keywords []string
	suffix   string
}{
	{[]string{"name"}, "Name"},
	{[]string{"company", "business"}, "Company"},
	{[]string{"email"}, "Email"},
	{[]string{"phone"}, "Phone"},
	{[]string{"preference", "interest"}, "Preference"},
	{[]string{"order", "product"}, "Order"},
	{[]string{"address"}, "Address"},
	{[]string{"feedback"}, "Feedback"},
}

// RecordResponse appends the utterance to the session's response log and,
// when the state's expected-input hint names a category, stores the raw
// utterance as a contextual fact under the derived "user<Category>" key.
// Last write wins; prior values survive only in the response log.
//
// A same-state transition entry is appended alongside the fact so that
// prompt compaction can show recent activity even without a state change.
func RecordResponse(s *domain.Session, state domain.StateDefinition, utterance string, valid bool) {
	s.Responses = append(s.Responses, domain.ResponseEntry{
		StateID:   state.ID,
		Value:     utterance,
		Valid:     valid,
		Timestamp: time.Now().UTC(),
	})

	key := FactKey(state.ExpectedInput)
	if key == "" {
		return
	}
	s.Facts[key] = utterance
	s.Transitions = append(s.Transitions, domain.TransitionEntry{
		From:   state.ID,
		To:     state.ID,
		Reason: factUpdateReasonPrefix + ": " + key,
	})
}

// FactKey derives the contextual-fact key for an expected-input hint.
// Recognized categories map to fixed keys ("userEmail"); any other
// non-empty hint derives a generic key from its first word. An empty hint
// stores nothing.
func FactKey(hint string) string {
	lowered := strings.ToLower(strings.TrimSpace(hint))
	if lowered == "" {
		return ""
	}
	for _, cat := range factCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lowered, kw) {
				return "user" + cat.suffix
			}
		}
	}
	// Generic category: first word of the hint, title-cased.
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	return "user" + strings.ToUpper(first[:1]) + first[1:]
}

// RelevantResponses returns the most recent responses, at most one per
// state (later entries win), drawn from the last relevantResponseLimit log
// entries. Order is chronological so prompt rendering stays deterministic.
func RelevantResponses(s *domain.Session) []domain.ResponseEntry {
	start := len(s.Responses) - relevantResponseLimit
	if start < 0 {
		start = 0
	}
	window := s.Responses[start:]

	latest := make(map[string]int, len(window))
	for i, r := range window {
		latest[r.StateID] = i
	}

	out := make([]domain.ResponseEntry, 0, len(latest))
	for i, r := range window {
		if latest[r.StateID] == i {
			out = append(out, r)
		}
	}
	return out
}

// RecentTransitions returns at most the last recentTransitionLimit
// transition log entries.
func RecentTransitions(s *domain.Session) []domain.TransitionEntry {
	start := len(s.Transitions) - recentTransitionLimit
	if start < 0 {
		start = 0
	}
	return s.Transitions[start:]
}

// ModelRates holds USD prices per 1000 tokens.
type ModelRates struct {
	InputPer1K  float64
	OutputPer1K float64
}

// RateTable selects rates by model family. Models whose name starts with
// "gpt-4" bill at the GPT4 rates; everything else uses Default.
type RateTable struct {
	Default ModelRates
	GPT4    ModelRates
}

// DefaultRates mirrors the published per-1000-token chat pricing.
func DefaultRates() RateTable {
	return RateTable{
		Default: ModelRates{InputPer1K: 0.0015, OutputPer1K: 0.002},
		GPT4:    ModelRates{InputPer1K: 0.03, OutputPer1K: 0.06},
	}
}

// ForModel returns the rates for the given model name.
func (t RateTable) ForModel(model string) ModelRates {
	if strings.HasPrefix(strings.ToLower(model), "gpt-4") {
		return t.GPT4
	}
	return t.Default
}

// UpdateTokenUsage accumulates token counts and recomputes the estimated
// cost from the cumulative totals. Recomputing (rather than summing
// per-turn costs) keeps the figure free of incremental rounding drift.
func UpdateTokenUsage(s *domain.Session, model string, inputTokens, outputTokens int, rates RateTable) {
	s.Usage.InputTokens += inputTokens
	s.Usage.OutputTokens += outputTokens
	s.Usage.TotalTokens = s.Usage.InputTokens + s.Usage.OutputTokens

	r := rates.ForModel(model)
	s.Usage.EstimatedCostUSD = float64(s.Usage.InputTokens)/1000*r.InputPer1K +
		float64(s.Usage.OutputTokens)/1000*r.OutputPer1K
}
