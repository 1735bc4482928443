package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
)

func sampleDefinition() *domain.ConversationDefinition {
	return &domain.ConversationDefinition{
		InitialStateID: "greeting",
		States: map[string]domain.StateDefinition{
			"greeting": {
				ID:   "greeting",
				Name: "Greeting",
				Transitions: []domain.Transition{
					{Condition: "yes,sure", TargetStateID: "book-class"},
				},
			},
			"book-class": {
				ID:       "book-class",
				Name:     "Book \"a\" Class",
				Terminal: true,
			},
		},
		Disqualifiers: []domain.DisqualificationRule{
			{Condition: "contains:stop", Message: "bye"},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(sampleDefinition(), nil)

	for _, want := range []string{
		"graph TD",
		`greeting(("Greeting"))`,
		`book_class(["Book 'a' Class"])`,
		`greeting -- "yes,sure" --> book_class`,
		`disqualified(["disqualified (1 rules)"])`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateMermaidOverlay(t *testing.T) {
	out := graph.GenerateMermaid(sampleDefinition(), &graph.Overlay{
		VisitedStates: []string{"greeting", "greeting"},
		CurrentState:  "book-class",
	})

	if !strings.Contains(out, "class greeting visited;") {
		t.Errorf("expected visited style, got:\n%s", out)
	}
	if strings.Count(out, "class greeting visited;") != 1 {
		t.Error("visited styles should be deduplicated")
	}
	if !strings.Contains(out, "class book_class current;") {
		t.Errorf("expected current style, got:\n%s", out)
	}
}

func TestOverlayFromSession(t *testing.T) {
	s := domain.NewSession("s1", "greeting")
	s.Transitions = []domain.TransitionEntry{
		{From: "greeting", To: "greeting", Reason: "form data update: userName"},
		{From: "greeting", To: "book-class", Reason: "yes,sure"},
	}
	s.CurrentStateID = "book-class"

	o := graph.OverlayFromSession(s)
	if len(o.VisitedStates) != 1 || o.VisitedStates[0] != "greeting" {
		t.Errorf("unexpected visited states: %v", o.VisitedStates)
	}
	if o.CurrentState != "book-class" {
		t.Errorf("unexpected current state: %v", o.CurrentState)
	}
}
