package hrot

import (
	"fmt"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var historyGrammar = newBSGrammar("History")

// History extends HROT with seven states recording where cells have been.
// Odd states are alive; 2 and 4 mark cells that were once alive; 6 is an
// inert marker that kills odd neighbours into state 2.
type History struct {
	birthSurvival
}

// ParseHistory parses an HROT rulestring followed by "History".
func ParseHistory(body string) (*History, error) {
	bs, err := historyGrammar.parse(body)
	if err != nil {
		return nil, err
	}
	h := &History{birthSurvival: bs}
	h.States = 7
	h.updateB0(2)
	return h, nil
}

// Name returns "History".
func (h *History) Name() string { return "History" }

// Rulestring returns the canonical rulestring.
func (h *History) Rulestring() string { return h.body() + "History" + h.Suffix() }

// Clone deep-copies the rule.
func (h *History) Clone() rules.Rule { return &History{birthSurvival: h.cloneBS()} }

// Describe lists the rule parameters.
func (h *History) Describe() core.ParameterSnapshot { return h.describe("History") }

// SetTransitions replaces birth and survival and recomputes the background.
func (h *History) SetTransitions(birth, survival Transitions) {
	h.Birth, h.Survival = birth.Clone(), survival.Clone()
	h.updateB0(2)
}

func odd(state int) bool { return state%2 == 1 }

// Independent leaves state 6 alone.
func (h *History) Independent(state, _ int, _ core.Coordinate) (int, bool) {
	if state == 6 {
		return 6, true
	}
	return 0, false
}

// Transition counts odd neighbours.
func (h *History) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	if state == 6 {
		return 6
	}
	s := 0
	for i, v := range neighbours {
		if v == 6 && odd(state) {
			return 2
		}
		if odd(v) {
			s += h.weight(i)
		}
	}
	switch state {
	case 1:
		if h.Survival.Has(s) {
			return 1
		}
		return 2
	case 3, 5:
		if h.Survival.Has(s) {
			return state
		}
		return 4
	case 0, 2:
		if h.Birth.Has(s) {
			return 1
		}
		return state
	case 4:
		if h.Birth.Has(s) {
			return 3
		}
		return 4
	}
	return 0
}

// MinMax infers the birth and survival range, treating odd states as alive.
func (h *History) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	minB, minS := NewTransitions(), NewTransitions()
	maxB, maxS := Span(0, h.MaxCount), Span(0, h.MaxCount)
	rules.Observe(h, grids, func(o rules.Observation) {
		s := 0
		for i, v := range o.Neighbours {
			if v == 6 && odd(o.State) {
				return
			}
			if odd(v) {
				s += h.weight(i)
			}
		}
		switch {
		case !odd(o.State) && odd(o.Next):
			minB[s] = struct{}{}
		case !odd(o.State):
			delete(maxB, s)
		case odd(o.Next):
			minS[s] = struct{}{}
		default:
			delete(maxS, s)
		}
	})
	minRule, maxRule := h.Clone().(*History), h.Clone().(*History)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (h *History) pair(minRule, maxRule rules.Rule) (*History, *History, bool) {
	lo, ok1 := minRule.(*History)
	hi, ok2 := maxRule.(*History)
	return lo, hi, ok1 && ok2
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (h *History) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := h.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether h lies between minRule and maxRule.
func (h *History) Between(minRule, maxRule rules.Rule) bool {
	if !h.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := h.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(h.Birth) && lo.Survival.SubsetOf(h.Survival) &&
		h.Birth.SubsetOf(hi.Birth) && h.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (h *History) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !h.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("history: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := h.pair(minRule, maxRule)
	r := newRandomiser(rng)
	out := h.Clone().(*History)
	out.SetTransitions(r.between(lo.Birth, hi.Birth), r.between(lo.Survival, hi.Survival))
	return out, nil
}
