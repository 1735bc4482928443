package runtime

import (
	"fmt"
	"math"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
)

func TestFactKey(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"name", "userName"},
		{"your full name", "userName"},
		{"company", "userCompany"},
		{"business name", "userCompany"},
		{"email address", "userEmail"},
		{"phone", "userPhone"},
		{"preference", "userPreference"},
		{"product interest", "userPreference"},
		{"order number", "userOrder"},
		{"shipping address", "userAddress"},
		{"feedback", "userFeedback"},
		{"budget", "userBudget"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := FactKey(tt.hint); got != tt.want {
			t.Errorf("FactKey(%q) = %q, want %q", tt.hint, got, tt.want)
		}
	}
}

func TestRecordResponse(t *testing.T) {
	s := domain.NewSession("s1", "ask_email")
	state := domain.StateDefinition{ID: "ask_email", ExpectedInput: "email"}

	RecordResponse(s, state, "me@example.com", true)

	if len(s.Responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(s.Responses))
	}
	if s.Facts["userEmail"] != "me@example.com" {
		t.Errorf("fact not stored: %v", s.Facts)
	}
	if len(s.Transitions) != 1 || s.Transitions[0].From != "ask_email" || s.Transitions[0].To != "ask_email" {
		t.Errorf("expected same-state form data entry, got %v", s.Transitions)
	}

	// Last write wins for the fact, history stays in the log.
	RecordResponse(s, state, "other@example.com", true)
	if s.Facts["userEmail"] != "other@example.com" {
		t.Errorf("fact not overwritten: %v", s.Facts)
	}
	if len(s.Responses) != 2 {
		t.Errorf("expected 2 responses, got %d", len(s.Responses))
	}
}

func TestRecordResponseNoHint(t *testing.T) {
	s := domain.NewSession("s1", "chat")
	RecordResponse(s, domain.StateDefinition{ID: "chat"}, "hello", true)

	if len(s.Facts) != 0 {
		t.Errorf("expected no facts, got %v", s.Facts)
	}
	if len(s.Transitions) != 0 {
		t.Errorf("expected no transition entries, got %v", s.Transitions)
	}
}

func TestRelevantResponses(t *testing.T) {
	s := domain.NewSession("s1", "a")
	for i := 0; i < 10; i++ {
		stateID := fmt.Sprintf("state%d", i%3)
		RecordResponse(s, domain.StateDefinition{ID: stateID}, fmt.Sprintf("answer %d", i), true)
	}

	got := RelevantResponses(s)
	// The 7-entry window covers indexes 3..9, which span three states;
	// only the latest answer per state survives.
	if len(got) != 3 {
		t.Fatalf("expected 3 deduped responses, got %d", len(got))
	}
	for _, r := range got {
		switch r.StateID {
		case "state0":
			if r.Value != "answer 9" {
				t.Errorf("state0: got %q", r.Value)
			}
		case "state1":
			if r.Value != "answer 7" {
				t.Errorf("state1: got %q", r.Value)
			}
		case "state2":
			if r.Value != "answer 8" {
				t.Errorf("state2: got %q", r.Value)
			}
		}
	}
}

func TestRecentTransitions(t *testing.T) {
	s := domain.NewSession("s1", "a")
	for i := 0; i < 8; i++ {
		s.Transitions = append(s.Transitions, domain.TransitionEntry{
			From: fmt.Sprintf("n%d", i), To: fmt.Sprintf("n%d", i+1), Reason: "any",
		})
	}

	got := RecentTransitions(s)
	if len(got) != 5 {
		t.Fatalf("expected 5 transitions, got %d", len(got))
	}
	if got[0].From != "n3" || got[4].From != "n7" {
		t.Errorf("wrong window: %v", got)
	}
}

func TestUpdateTokenUsage(t *testing.T) {
	rates := DefaultRates()
	s := domain.NewSession("s1", "a")

	UpdateTokenUsage(s, "gpt-3.5-turbo", 40, 10, rates)
	UpdateTokenUsage(s, "gpt-3.5-turbo", 30, 5, rates)

	if s.Usage.TotalTokens != 85 {
		t.Errorf("TotalTokens = %d, want 85", s.Usage.TotalTokens)
	}
	if s.Usage.InputTokens != 70 || s.Usage.OutputTokens != 15 {
		t.Errorf("unexpected split: %+v", s.Usage)
	}

	// Cost must equal a fresh computation over the cumulative totals.
	want := 70.0/1000*rates.Default.InputPer1K + 15.0/1000*rates.Default.OutputPer1K
	if math.Abs(s.Usage.EstimatedCostUSD-want) > 1e-12 {
		t.Errorf("EstimatedCostUSD = %v, want %v", s.Usage.EstimatedCostUSD, want)
	}
}

func TestRateTableForModel(t *testing.T) {
	rates := DefaultRates()
	if rates.ForModel("gpt-4o") != rates.GPT4 {
		t.Error("gpt-4o should bill at GPT4 rates")
	}
	if rates.ForModel("GPT-4") != rates.GPT4 {
		t.Error("model family match should be case-insensitive")
	}
	if rates.ForModel("gpt-3.5-turbo") != rates.Default {
		t.Error("gpt-3.5-turbo should bill at default rates")
	}
	if rates.ForModel("") != rates.Default {
		t.Error("empty model should bill at default rates")
	}
}
