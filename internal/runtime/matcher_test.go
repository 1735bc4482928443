package runtime

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		condition string
		want      bool
	}{
		{"any matches everything", "whatever", "any", true},
		{"any is case-insensitive", "", "ANY", true},
		{"comma alternation hit", "yes please", "yes,no", true},
		{"comma alternation miss", "nope", "yes,no", false},
		{"comma alternation second branch", "no thanks", "yes,no", true},
		{"exact is case-sensitive", "ABC", "exact:abc", false},
		{"exact match", "abc", "exact:abc", true},
		{"contains is case-insensitive", "ABC DEF", "contains:abc", true},
		{"contains miss", "hello", "contains:abc", false},
		{"starts prefix", "Hello there", "starts:hello", true},
		{"starts miss", "say hello", "starts:hello", false},
		{"ends suffix", "talk to you SOON", "ends:soon", true},
		{"wildcard star", "hello big world", "hello*world", true},
		{"wildcard plus", "ab", "a+b", true},
		{"alternation regex", "maybe later", "maybe|perhaps", true},
		{"malformed regex fails closed", "yes", "yes|[", false},
		{"repeated word inside condition text", "ok ok ok", "okay", true},
		{"no repetition no substring", "ok thanks", "okay", false},
		{"substring fallback", "ok thanks", "ok", true},
		{"substring fallback case-insensitive", "OK thanks", "ok", true},
		{"empty condition never matches", "anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.utterance, tt.condition); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.utterance, tt.condition, got, tt.want)
			}
		})
	}
}

func TestMatchesRepetitionOnly(t *testing.T) {
	// "stop" repeats in the utterance and appears in the condition text,
	// but the condition itself is not a substring of the utterance.
	if !Matches("stop stop emailing me", "stop contacting") {
		t.Error("expected repetition rule to match")
	}
	// Same condition without the repetition should not match.
	if Matches("quit emailing me", "stop contacting") {
		t.Error("expected no match without repetition")
	}
}

func TestRepeatedWord(t *testing.T) {
	if w, ok := repeatedWord("ok ok sure"); !ok || w != "ok" {
		t.Errorf("repeatedWord = %q, %v", w, ok)
	}
	if _, ok := repeatedWord("no repeats here"); ok {
		t.Error("expected no repeated word")
	}
	// Case folding applies before comparison.
	if w, ok := repeatedWord("Ok ok"); !ok || w != "ok" {
		t.Errorf("repeatedWord = %q, %v", w, ok)
	}
}
