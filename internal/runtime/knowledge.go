package runtime

import (
	"regexp"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// knowledgeMetachars are the regex metacharacters that flag a knowledge
// pattern as a regular expression rather than a bag of terms.
const knowledgeMetachars = "|+*?()[]"

// minTermLength filters out short terms when matching knowledge patterns
// by vocabulary. Terms of 3 characters or fewer ("the", "is", "a") match
// almost anything and would make the resolver fire constantly.
const minTermLength = 3

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// ResolveKnowledge matches an utterance against the definition's knowledge
// items, in order, independent of conversation state. The first matching
// item's answer is returned with {variableName} placeholders interpolated
// from the session facts; unresolved placeholders are left verbatim.
//
// Patterns containing regex metacharacters are evaluated as case-insensitive
// regular expressions; a pattern that fails to compile degrades to plain
// substring matching. Plain patterns match when any of their terms longer
// than minTermLength appears in the utterance.
func ResolveKnowledge(items []domain.KnowledgeItem, facts map[string]string, utterance string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(utterance))
	if lowered == "" {
		return "", false
	}

	for _, item := range items {
		if !knowledgeMatch(item.Pattern, lowered) {
			continue
		}
		return interpolate(item.Answer, facts), true
	}
	return "", false
}

func knowledgeMatch(pattern, lowered string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}

	if strings.ContainsAny(pattern, knowledgeMetachars) {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return strings.Contains(lowered, strings.ToLower(pattern))
		}
		return re.MatchString(lowered)
	}

	for _, term := range strings.Fields(strings.ToLower(pattern)) {
		if len(term) <= minTermLength {
			continue
		}
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// interpolate substitutes {variableName} placeholders with session facts,
// leaving unknown placeholders untouched.
func interpolate(answer string, facts map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(answer, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := facts[name]; ok {
			return v
		}
		return m
	})
}
