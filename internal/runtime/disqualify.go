package runtime

import "github.com/aretw0/parley/pkg/domain"

// Disqualify checks an utterance against the prioritized disqualification
// rules. The first matching rule wins and its terminal message is returned.
func Disqualify(rules []domain.DisqualificationRule, utterance string) (*domain.DisqualificationRule, bool) {
	for i := range rules {
		if Matches(utterance, rules[i].Condition) {
			return &rules[i], true
		}
	}
	return nil, false
}
