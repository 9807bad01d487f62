package stages

import "strings"

type intent int

const (
	intentGeneral intent = iota
	intentLoan
	intentAffirmative
	intentNegative
)

// intentRules is an ordered rule table: the first rule whose keyword set
// matches wins. A loan inquiry and the three purpose-specific inquiries all
// resolve to a loan intent; an affirmative answer to the greeting counts as
// one too.
var intentRules = []struct {
	keywords []string
	intent   intent
}{
	{[]string{"loan", "borrow", "money", "need funds"}, intentLoan},
	{[]string{"holiday", "vacation", "travel"}, intentLoan},
	{[]string{"marriage", "wedding"}, intentLoan},
	{[]string{"medical", "hospital", "treatment"}, intentLoan},
	{[]string{"yes", "sure", "okay", "proceed"}, intentAffirmative},
	{[]string{"no", "not now", "later"}, intentNegative},
}

func classifyIntent(text string) intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return intentGeneral
}
