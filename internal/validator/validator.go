// Package validator performs opportunistic checks on conversation
// definitions. Findings are warnings for the author, never fatal to the
// engine: a dangling transition simply never fires at runtime.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single validation result.
type Finding struct {
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
}

// Validate inspects a definition and returns all findings, errors first,
// in a stable order.
func Validate(def *domain.ConversationDefinition) []Finding {
	var findings []Finding

	if def.InitialStateID == "" {
		findings = append(findings, Finding{SeverityError, "initial state is not set"})
	} else if _, ok := def.States[def.InitialStateID]; !ok {
		findings = append(findings, Finding{SeverityError,
			fmt.Sprintf("initial state %q does not exist", def.InitialStateID)})
	}

	if len(def.States) == 0 {
		findings = append(findings, Finding{SeverityError, "definition has no states"})
	}

	ids := make([]string, 0, len(def.States))
	for id := range def.States {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		state := def.States[id]
		if state.ID != "" && state.ID != id {
			findings = append(findings, Finding{SeverityWarning,
				fmt.Sprintf("state %q declares mismatching id %q", id, state.ID)})
		}
		if strings.TrimSpace(state.Prompt) == "" {
			findings = append(findings, Finding{SeverityWarning,
				fmt.Sprintf("state %q has an empty prompt", id)})
		}
		for i, t := range state.Transitions {
			if strings.TrimSpace(t.Condition) == "" {
				findings = append(findings, Finding{SeverityWarning,
					fmt.Sprintf("state %q transition %d has an empty condition", id, i)})
			}
			if _, ok := def.States[t.TargetStateID]; !ok {
				findings = append(findings, Finding{SeverityError,
					fmt.Sprintf("state %q transition %d targets unknown state %q", id, i, t.TargetStateID)})
			}
		}
	}

	findings = append(findings, checkReachability(def, ids)...)

	for i, rule := range def.Disqualifiers {
		if strings.TrimSpace(rule.Condition) == "" {
			findings = append(findings, Finding{SeverityWarning,
				fmt.Sprintf("disqualification rule %d has an empty condition", i)})
		}
		if strings.TrimSpace(rule.Message) == "" {
			findings = append(findings, Finding{SeverityWarning,
				fmt.Sprintf("disqualification rule %d has an empty message", i)})
		}
	}

	for i, item := range def.Knowledge {
		if strings.TrimSpace(item.Pattern) == "" {
			findings = append(findings, Finding{SeverityWarning,
				fmt.Sprintf("knowledge item %d has an empty pattern", i)})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity == SeverityError && findings[j].Severity != SeverityError
	})
	return findings
}

// checkReachability walks the flow from the initial state and reports
// states no transition can ever reach.
func checkReachability(def *domain.ConversationDefinition, ids []string) []Finding {
	if _, ok := def.States[def.InitialStateID]; !ok {
		return nil
	}

	visited := map[string]bool{}
	queue := []string{def.InitialStateID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		for _, t := range def.States[id].Transitions {
			if _, ok := def.States[t.TargetStateID]; ok && !visited[t.TargetStateID] {
				queue = append(queue, t.TargetStateID)
			}
		}
	}

	var findings []Finding
	for _, id := range ids {
		if !visited[id] {
			findings = append(findings, Finding{SeverityWarning,
				fmt.Sprintf("state %q is unreachable from the initial state", id)})
		}
	}
	return findings
}
