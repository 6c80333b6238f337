package isotropic

import (
	"regexp"

	"casearch/internal/rules"
)

// PriorityINT places INT after the outer-totalistic families, which claim
// the totalistic rulestrings both accept.
const PriorityINT = 30

func init() {
	rules.Register(rules.Family{
		Name:     "INT",
		Priority: PriorityINT,
		Patterns: []*regexp.Regexp{mooreRe, vn2Re},
		Parse:    func(body string) (rules.Rule, error) { return ParseINT(body) },
	})
}
