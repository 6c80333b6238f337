package hrot

import (
	"regexp"

	"casearch/internal/rules"
)

// Priorities of the outer-totalistic families. Plain HROT is tried first so
// that totalistic rulestrings accepted by other families resolve here.
const (
	PriorityHROT = 10 + iota
	PriorityHistory
	PrioritySymbiosis
	PriorityDeadlyEnemies
	PriorityGenerations
	PriorityBSFKL
	PriorityCyclic
	PriorityDeficient
	PriorityInteger
)

func init() {
	rules.Register(rules.Family{
		Name:     "HROT",
		Priority: PriorityHROT,
		Patterns: hrotGrammar.patterns(),
		Parse:    func(body string) (rules.Rule, error) { return ParseHROT(body) },
	})
	rules.Register(rules.Family{
		Name:     "History",
		Priority: PriorityHistory,
		Patterns: historyGrammar.patterns(),
		Parse:    func(body string) (rules.Rule, error) { return ParseHistory(body) },
	})
	rules.Register(rules.Family{
		Name:     "Symbiosis",
		Priority: PrioritySymbiosis,
		Patterns: symbiosisGrammar.patterns(),
		Parse:    func(body string) (rules.Rule, error) { return ParseSymbiosis(body) },
	})
	rules.Register(rules.Family{
		Name:     "DeadlyEnemies",
		Priority: PriorityDeadlyEnemies,
		Patterns: deadlyEnemiesGrammar.patterns(),
		Parse:    func(body string) (rules.Rule, error) { return ParseDeadlyEnemies(body) },
	})
	rules.Register(rules.Family{
		Name:     "Generations",
		Priority: PriorityGenerations,
		Patterns: []*regexp.Regexp{generationsMooreRe, generationsRangeRe},
		Parse:    func(body string) (rules.Rule, error) { return ParseGenerations(body) },
	})
	rules.Register(rules.Family{
		Name:     "BSFKL",
		Priority: PriorityBSFKL,
		Patterns: []*regexp.Regexp{bsfklRe},
		Parse:    func(body string) (rules.Rule, error) { return ParseBSFKL(body) },
	})
	rules.Register(rules.Family{
		Name:     "Cyclic",
		Priority: PriorityCyclic,
		Patterns: []*regexp.Regexp{cyclicMooreRe, cyclicRangeRe},
		Parse:    func(body string) (rules.Rule, error) { return ParseCyclic(body) },
	})
}
