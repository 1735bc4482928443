package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// BuildPrompt produces the bounded system prompt sent to the model when a
// turn escalates. It compacts the session down to what the model needs:
// the business persona, the current step, collected form data, and a short
// window of prior responses and transitions. It never invokes the model.
func BuildPrompt(identity domain.Identity, state domain.StateDefinition, s *domain.Session) string {
	var b strings.Builder

	role := identity.Role
	if role == "" {
		role = "conversational assistant"
	}
	if identity.BusinessName != "" {
		fmt.Fprintf(&b, "You are a %s for %s.", role, identity.BusinessName)
	} else {
		fmt.Fprintf(&b, "You are a %s.", role)
	}
	if identity.Tone != "" {
		fmt.Fprintf(&b, " Keep a %s tone.", identity.Tone)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Current conversation step: %s\n", state.ID)
	if state.Prompt != "" {
		fmt.Fprintf(&b, "Step goal: %s\n", state.Prompt)
	}
	if state.ExpectedInput != "" {
		fmt.Fprintf(&b, "Expected input: %s\n", state.ExpectedInput)
	}
	if state.ExpectedKeywords != "" {
		fmt.Fprintf(&b, "Expected keywords: %s\n", state.ExpectedKeywords)
	}

	if facts := formData(s.Facts); len(facts) > 0 {
		b.WriteString("\nForm data collected so far:\n")
		for _, f := range facts {
			fmt.Fprintf(&b, "- %s: %s\n", f[0], f[1])
		}
	}

	if responses := RelevantResponses(s); len(responses) > 0 {
		b.WriteString("\nRecent user responses:\n")
		for _, r := range responses {
			fmt.Fprintf(&b, "- [%s] %s\n", r.StateID, r.Value)
		}
	}

	if transitions := RecentTransitions(s); len(transitions) > 0 {
		b.WriteString("\nRecent activity:\n")
		for _, t := range transitions {
			fmt.Fprintf(&b, "- %s -> %s (%s)\n", t.From, t.To, t.Reason)
		}
	}

	b.WriteString("\nAnswer the user's message in the context of the current step. ")
	b.WriteString("Ground your answer in the form data above and refer back to it when relevant. ")
	b.WriteString("Preserve the user's spelling of names and values exactly; never duplicate letters or words.")

	return b.String()
}

// formData returns the non-identity facts as sorted key/value pairs so the
// rendered prompt is deterministic.
func formData(facts map[string]string) [][2]string {
	out := make([][2]string, 0, len(facts))
	for k, v := range facts {
		if isIdentityFact(k) {
			continue
		}
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
