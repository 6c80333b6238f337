package hrot

import (
	"fmt"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var hrotGrammar = newBSGrammar("")

// HROT is a two-state weighted outer-totalistic rule.
type HROT struct {
	birthSurvival
}

// ParseHROT parses B3/S23, B2/S34H, B2/S3V or R2,C2,S6-9,B7-8,NM forms.
func ParseHROT(body string) (*HROT, error) {
	bs, err := hrotGrammar.parse(body)
	if err != nil {
		return nil, err
	}
	h := &HROT{birthSurvival: bs}
	h.States = 2
	h.updateBackground()
	return h, nil
}

// MustParseHROT is ParseHROT for rulestrings known to be valid.
func MustParseHROT(body string) *HROT {
	h, err := ParseHROT(body)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *HROT) updateBackground() { h.updateB0(2) }

// Name returns "HROT".
func (h *HROT) Name() string { return "HROT" }

// Rulestring returns the canonical rulestring.
func (h *HROT) Rulestring() string { return h.body() + h.Suffix() }

// Clone deep-copies the rule.
func (h *HROT) Clone() rules.Rule { return &HROT{birthSurvival: h.cloneBS()} }

// Describe lists the rule parameters.
func (h *HROT) Describe() core.ParameterSnapshot { return h.describe("HROT") }

// SetTransitions replaces birth and survival and recomputes the background.
func (h *HROT) SetTransitions(birth, survival Transitions) {
	h.Birth, h.Survival = birth.Clone(), survival.Clone()
	h.updateBackground()
}

// Transition applies birth on a dead cell and survival on a live one.
func (h *HROT) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	s := 0
	for i, v := range neighbours {
		s += v * h.weight(i)
	}
	if state == 1 && h.Survival.Has(s) || state == 0 && h.Birth.Has(s) {
		return 1
	}
	return 0
}

// MinMax infers the birth and survival range consistent with grids.
func (h *HROT) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	return h.minMaxWithin(grids, Span(0, h.MaxCount))
}

// minMaxWithin bounds the max rule by the candidate sums in universe.
func (h *HROT) minMaxWithin(grids []*core.Grid, universe Transitions) (rules.Rule, rules.Rule, error) {
	minB, minS := NewTransitions(), NewTransitions()
	maxB, maxS := universe.Clone(), universe.Clone()
	rules.Observe(h, grids, func(o rules.Observation) {
		s := 0
		for i, v := range o.Neighbours {
			s += v * h.weight(i)
		}
		switch {
		case o.State == 0 && o.Next == 1:
			minB[s] = struct{}{}
		case o.State == 0 && o.Next == 0:
			delete(maxB, s)
		case o.State == 1 && o.Next == 1:
			minS[s] = struct{}{}
		case o.State == 1 && o.Next == 0:
			delete(maxS, s)
		}
	})
	minRule, maxRule := h.Clone().(*HROT), h.Clone().(*HROT)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (h *HROT) pair(minRule, maxRule rules.Rule) (*HROT, *HROT, bool) {
	lo, ok1 := minRule.(*HROT)
	hi, ok2 := maxRule.(*HROT)
	return lo, hi, ok1 && ok2
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (h *HROT) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := h.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether h lies between minRule and maxRule.
func (h *HROT) Between(minRule, maxRule rules.Rule) bool {
	if !h.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := h.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(h.Birth) && lo.Survival.SubsetOf(h.Survival) &&
		h.Birth.SubsetOf(hi.Birth) && h.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (h *HROT) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !h.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("hrot: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := h.pair(minRule, maxRule)
	r := newRandomiser(rng)
	out := h.Clone().(*HROT)
	out.SetTransitions(r.between(lo.Birth, hi.Birth), r.between(lo.Survival, hi.Survival))
	return out, nil
}
