package runtime

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
)

func TestResolveKnowledge(t *testing.T) {
	items := []domain.KnowledgeItem{
		{Pattern: "where are you located", Answer: "We are in {userCompany}."},
		{Pattern: "opening|hours", Answer: "We are open 9 to 5."},
		{Pattern: "refund policy", Answer: "Refunds within 30 days."},
	}
	facts := map[string]string{"userCompany": "Acme"}

	t.Run("term match with interpolation", func(t *testing.T) {
		got, ok := ResolveKnowledge(items, facts, "Where are you located?")
		if !ok {
			t.Fatal("expected a match")
		}
		if got != "We are in Acme." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("regex pattern", func(t *testing.T) {
		got, ok := ResolveKnowledge(items, facts, "what are your HOURS")
		if !ok || got != "We are open 9 to 5." {
			t.Errorf("got %q, %v", got, ok)
		}
	})

	t.Run("short terms ignored", func(t *testing.T) {
		// "are" and "you" are in the first pattern but too short to count.
		if _, ok := ResolveKnowledge(items, facts, "are you there"); ok {
			t.Error("short terms should not trigger a match")
		}
	})

	t.Run("no match", func(t *testing.T) {
		if _, ok := ResolveKnowledge(items, facts, "tell me a joke"); ok {
			t.Error("expected no match")
		}
	})

	t.Run("first match wins", func(t *testing.T) {
		got, _ := ResolveKnowledge(items, facts, "located refund")
		if got != "We are in Acme." {
			t.Errorf("expected first item to win, got %q", got)
		}
	})
}

func TestResolveKnowledgeMalformedRegex(t *testing.T) {
	items := []domain.KnowledgeItem{
		{Pattern: "price [", Answer: "See our pricing page."},
	}

	// The pattern fails to compile and degrades to substring matching of
	// the raw text.
	if _, ok := ResolveKnowledge(items, nil, "what is the price"); ok {
		t.Error("degraded substring match should require the full raw pattern")
	}
	got, ok := ResolveKnowledge(items, nil, "what is the price [ thing")
	if !ok || got != "See our pricing page." {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestInterpolateUnresolvedPlaceholder(t *testing.T) {
	got := interpolate("Hello {userName}, welcome to {unknown}.", map[string]string{"userName": "Ada"})
	want := "Hello Ada, welcome to {unknown}."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
