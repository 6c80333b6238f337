package hrot

import (
	"fmt"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var (
	symbiosisGrammar     = newBSGrammar("Symbiosis")
	deadlyEnemiesGrammar = newBSGrammar("DeadlyEnemies")
)

// Species is a three-state rule with two competing species sharing one
// birth/survival rule. In Symbiosis a cell touching the other species
// always survives; in DeadlyEnemies it always dies.
type Species struct {
	birthSurvival
	Deadly bool
}

// ParseSymbiosis parses an HROT rulestring followed by "Symbiosis".
func ParseSymbiosis(body string) (*Species, error) {
	return parseSpecies(body, symbiosisGrammar, false)
}

// ParseDeadlyEnemies parses an HROT rulestring followed by "DeadlyEnemies".
func ParseDeadlyEnemies(body string) (*Species, error) {
	return parseSpecies(body, deadlyEnemiesGrammar, true)
}

func parseSpecies(body string, g bsGrammar, deadly bool) (*Species, error) {
	bs, err := g.parse(body)
	if err != nil {
		return nil, err
	}
	if bs.Birth.Has(0) {
		return nil, rules.Invalid(body, "B0", "species rules do not support B0")
	}
	s := &Species{birthSurvival: bs, Deadly: deadly}
	s.States = 3
	s.updateB0(1)
	return s, nil
}

// Name returns the family name.
func (s *Species) Name() string {
	if s.Deadly {
		return "DeadlyEnemies"
	}
	return "Symbiosis"
}

// Rulestring returns the canonical rulestring.
func (s *Species) Rulestring() string { return s.body() + s.Name() + s.Suffix() }

// Clone deep-copies the rule.
func (s *Species) Clone() rules.Rule {
	return &Species{birthSurvival: s.cloneBS(), Deadly: s.Deadly}
}

// Describe lists the rule parameters.
func (s *Species) Describe() core.ParameterSnapshot { return s.describe(s.Name()) }

// SetTransitions replaces birth and survival.
func (s *Species) SetTransitions(birth, survival Transitions) {
	s.Birth, s.Survival = birth.Clone(), survival.Clone()
}

func opposite(state int) int { return 3 - state }

// Transition applies the species interaction, then birth and survival on
// the count of live neighbours.
func (s *Species) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	sum := 0
	var one, two bool
	for i, v := range neighbours {
		if v == 0 {
			continue
		}
		if state != 0 && v == opposite(state) {
			if s.Deadly {
				return 0
			}
			return state
		}
		one = one || v == 1
		two = two || v == 2
		sum += s.weight(i)
	}
	switch {
	case state > 0 && s.Survival.Has(sum):
		return state
	case state == 0 && s.Birth.Has(sum):
		switch {
		case one && two:
			return 0
		case one:
			return 1
		case two:
			return 2
		}
	}
	return 0
}

// MinMax infers birth and survival from cells not decided by species
// interaction.
func (s *Species) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	minB, minS := NewTransitions(), NewTransitions()
	maxB, maxS := Span(0, s.MaxCount), Span(0, s.MaxCount)
	rules.Observe(s, grids, func(o rules.Observation) {
		sum := 0
		var one, two bool
		for i, v := range o.Neighbours {
			if v == 0 {
				continue
			}
			if o.State != 0 && v == opposite(o.State) {
				return
			}
			one = one || v == 1
			two = two || v == 2
			sum += s.weight(i)
		}
		switch {
		case o.State == 0 && one && two:
		case o.State == 0 && o.Next != 0:
			minB[sum] = struct{}{}
		case o.State == 0:
			delete(maxB, sum)
		case o.Next == o.State:
			minS[sum] = struct{}{}
		default:
			delete(maxS, sum)
		}
	})
	delete(maxB, 0)
	minRule, maxRule := s.Clone().(*Species), s.Clone().(*Species)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (s *Species) pair(minRule, maxRule rules.Rule) (*Species, *Species, bool) {
	lo, ok1 := minRule.(*Species)
	hi, ok2 := maxRule.(*Species)
	return lo, hi, ok1 && ok2 && lo.Deadly == s.Deadly && hi.Deadly == s.Deadly
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (s *Species) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := s.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether s lies between minRule and maxRule.
func (s *Species) Between(minRule, maxRule rules.Rule) bool {
	if !s.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := s.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(s.Birth) && lo.Survival.SubsetOf(s.Survival) &&
		s.Birth.SubsetOf(hi.Birth) && s.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (s *Species) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !s.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("%s: randomise %s..%s: %w", s.Name(), minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := s.pair(minRule, maxRule)
	r := newRandomiser(rng)
	out := s.Clone().(*Species)
	out.SetTransitions(r.between(lo.Birth, hi.Birth), r.between(lo.Survival, hi.Survival))
	return out, nil
}
