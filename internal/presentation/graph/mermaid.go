// Package graph renders conversation definitions as Mermaid flowcharts.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Overlay contains dynamic session data to visualize on the graph.
type Overlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces Mermaid flowchart syntax from a definition.
// Semantic shapes:
//   - Initial state: ((circle))
//   - Terminal state: ([stadium])
//   - Default: [rectangle]
//
// Overlay styles (visited/current) are applied when provided.
func GenerateMermaid(def *domain.ConversationDefinition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, 0, len(def.States))
	for id := range def.States {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		state := def.States[id]
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		switch {
		case id == def.InitialStateID:
			opener, closer = "((", "))"
		case state.Terminal:
			opener, closer = "([", "])"
		}

		label := id
		if state.Name != "" {
			label = state.Name
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))

		for _, t := range state.Transitions {
			safeTo := sanitizeMermaidID(t.TargetStateID)
			arrow := "-->"
			if t.Condition != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(t.Condition))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	// Disqualifiers apply from every state; render them once as a detached
	// terminal sink to keep the diagram readable.
	if len(def.Disqualifiers) > 0 {
		sb.WriteString(fmt.Sprintf("    disqualified([\"disqualified (%d rules)\"])\n", len(def.Disqualifiers)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

// OverlayFromSession derives the visited/current overlay from a session's
// transition log.
func OverlayFromSession(s *domain.Session) *Overlay {
	if s == nil {
		return nil
	}
	o := &Overlay{CurrentState: s.CurrentStateID}
	for _, t := range s.Transitions {
		if t.From != t.To {
			o.VisitedStates = append(o.VisitedStates, t.From)
		}
	}
	return o
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
