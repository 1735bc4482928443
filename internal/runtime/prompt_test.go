package runtime

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
)

func TestBuildPrompt(t *testing.T) {
	identity := domain.Identity{
		BusinessName: "Acme Plumbing",
		Role:         "booking assistant",
		Tone:         "friendly",
	}
	state := domain.StateDefinition{
		ID:            "ask_slot",
		Prompt:        "Ask for a preferred time slot.",
		ExpectedInput: "preference",
	}

	s := domain.NewSession("s1", "ask_slot")
	s.Facts["userName"] = "Jo Vandenberg"
	s.Facts["userEmail"] = "jo@example.com"
	s.Facts["businessName"] = "Acme Plumbing"
	RecordResponse(s, domain.StateDefinition{ID: "greeting", ExpectedInput: "name"}, "Jo Vandenberg", true)

	prompt := BuildPrompt(identity, state, s)

	for _, want := range []string{
		"booking assistant",
		"Acme Plumbing",
		"friendly",
		"ask_slot",
		"Ask for a preferred time slot.",
		"userName: Jo Vandenberg",
		"userEmail: jo@example.com",
		"[greeting] Jo Vandenberg",
		"spelling",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// Identity fields are rendered as persona, not as form data.
	if strings.Contains(prompt, "businessName:") {
		t.Errorf("identity fact leaked into form data:\n%s", prompt)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	s := domain.NewSession("s1", "a")
	s.Facts["userB"] = "2"
	s.Facts["userA"] = "1"
	s.Facts["userC"] = "3"

	state := domain.StateDefinition{ID: "a", Prompt: "p"}
	first := BuildPrompt(domain.Identity{}, state, s)
	for i := 0; i < 10; i++ {
		if got := BuildPrompt(domain.Identity{}, state, s); got != first {
			t.Fatal("prompt rendering is not deterministic")
		}
	}
}
