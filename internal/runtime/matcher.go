package runtime

import (
	"regexp"
	"strings"
)

// Matches reports whether an utterance satisfies a transition or rule
// condition. It is a pure function of its two inputs.
//
// Supported condition forms, in evaluation order:
//
//   - "any" (case-insensitive): always matches.
//   - comma-separated alternatives: each sub-condition is trimmed,
//     lower-cased and OR'd.
//   - "contains:", "exact:", "starts:", "ends:" prefixes. Only "exact:"
//     is case-sensitive.
//   - regex-lite: a condition containing any of * + ? | is compiled as a
//     case-insensitive regular expression, with bare * and + upgraded to
//     .* and .+. A malformed pattern is a non-match, never an error.
//   - repeated-word rule: an utterance with two or more identical
//     consecutive tokens matches any condition whose text contains the
//     repeated word. This lets rules target filler like "ok ok ok".
//   - fallback: case-insensitive substring containment of the condition
//     within the utterance.
func Matches(utterance, condition string) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return false
	}
	if strings.EqualFold(condition, "any") {
		return true
	}

	if strings.Contains(condition, ",") {
		lowered := strings.ToLower(strings.TrimSpace(utterance))
		for _, part := range strings.Split(condition, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if matchSingle(lowered, part) {
				return true
			}
		}
		return false
	}

	return matchSingle(utterance, condition)
}

func matchSingle(utterance, condition string) bool {
	if strings.EqualFold(condition, "any") {
		return true
	}

	if rest, ok := strings.CutPrefix(condition, "contains:"); ok {
		return strings.Contains(strings.ToLower(utterance), strings.ToLower(rest))
	}
	if rest, ok := strings.CutPrefix(condition, "exact:"); ok {
		return utterance == rest
	}
	if rest, ok := strings.CutPrefix(condition, "starts:"); ok {
		return strings.HasPrefix(strings.ToLower(utterance), strings.ToLower(rest))
	}
	if rest, ok := strings.CutPrefix(condition, "ends:"); ok {
		return strings.HasSuffix(strings.ToLower(utterance), strings.ToLower(rest))
	}

	if strings.ContainsAny(condition, "*+?|") {
		return matchPattern(utterance, condition)
	}

	if word, ok := repeatedWord(utterance); ok {
		if strings.Contains(strings.ToLower(condition), word) {
			return true
		}
	}

	return strings.Contains(strings.ToLower(utterance), strings.ToLower(condition))
}

// matchPattern interprets the condition as a regex-lite expression against
// the original (non-lowered) utterance.
func matchPattern(utterance, condition string) bool {
	expr := strings.ReplaceAll(condition, "*", ".*")
	expr = strings.ReplaceAll(expr, "+", ".+")

	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		// Malformed pattern: fail the match rather than propagate.
		return false
	}
	return re.MatchString(utterance)
}

// repeatedWord returns the first lower-cased token that appears twice or
// more in immediate succession in the utterance.
func repeatedWord(utterance string) (string, bool) {
	tokens := strings.Fields(strings.ToLower(utterance))
	for i := 1; i < len(tokens); i++ {
		if tokens[i] == tokens[i-1] {
			return tokens[i], true
		}
	}
	return "", false
}
