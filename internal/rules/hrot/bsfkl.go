package hrot

import (
	"fmt"
	"regexp"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var bsfklRe = regexp.MustCompile(`^R(\d+),B` + trans + `S` + trans + `F` + trans + `K` + trans + `L` + trans + nbhdSpec + `$`)

// BSFKL is a three-state rule where state 2 is a dying state that can
// be revived. Birth needs sum1 in B and sum2 in F; a live cell is killed
// by sum2 in K, otherwise survives on sum1 in S; a dying cell is cleared
// by sum1 in L.
type BSFKL struct {
	neighbourhood
	Birth, Survival, Forcing, Killing, Living Transitions
}

// ParseBSFKL parses R1,B3,S2-3,F0,K,L0-8,NM style rulestrings.
func ParseBSFKL(body string) (*BSFKL, error) {
	m := bsfklRe.FindStringSubmatch(body)
	if m == nil {
		return nil, rules.Invalid(body, body, "not a BSFKL rulestring")
	}
	r, err := strconv.Atoi(m[1])
	if err != nil || r < 1 {
		return nil, rules.Invalid(body, "R"+m[1], "range must be positive")
	}
	b := &BSFKL{}
	sets := []*Transitions{&b.Birth, &b.Survival, &b.Forcing, &b.Killing, &b.Living}
	for i, set := range sets {
		if *set, err = parseCommas(body, m[i+2]); err != nil {
			return nil, err
		}
	}
	if err := b.load(body, m[7], r); err != nil {
		return nil, err
	}
	if b.Cells == nil {
		return nil, rules.Invalid(body, m[7], "empty neighbourhood")
	}
	for _, set := range sets {
		if err := checkSums(body, *set, b.MaxCount); err != nil {
			return nil, err
		}
	}
	if b.Birth.Has(0) && b.Forcing.Has(0) {
		return nil, rules.Invalid(body, "B0", "B0 with F0 is not supported")
	}
	b.States = 3
	return b, nil
}

// Name returns "BSFKL".
func (b *BSFKL) Name() string { return "BSFKL" }

// Rulestring returns the canonical rulestring.
func (b *BSFKL) Rulestring() string {
	return fmt.Sprintf("R%d,B%sS%sF%sK%sL%s%s", b.Range,
		b.Birth.Commas(), b.Survival.Commas(), b.Forcing.Commas(),
		b.Killing.Commas(), b.Living.Commas(), b.Spec) + b.Suffix()
}

// Clone deep-copies the rule.
func (b *BSFKL) Clone() rules.Rule {
	return &BSFKL{
		neighbourhood: b.cloneNeighbourhood(),
		Birth:         b.Birth.Clone(),
		Survival:      b.Survival.Clone(),
		Forcing:       b.Forcing.Clone(),
		Killing:       b.Killing.Clone(),
		Living:        b.Living.Clone(),
	}
}

// Describe lists the rule parameters.
func (b *BSFKL) Describe() core.ParameterSnapshot {
	str := func(key, label string, t Transitions) core.Parameter {
		return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: t.Commas()}
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "BSFKL",
			Params: []core.Parameter{
				str("birth", "Birth", b.Birth),
				str("survival", "Survival", b.Survival),
				str("forcing", "Forcing", b.Forcing),
				str("killing", "Killing", b.Killing),
				str("living", "Living", b.Living),
			},
		},
		b.neighbourhood.describe(),
	}}
}

func (b *BSFKL) sums(neighbours []int) (sum1, sum2 int) {
	for i, v := range neighbours {
		switch v {
		case 1:
			sum1 += b.weight(i)
		case 2:
			sum2 += b.weight(i)
		}
	}
	return sum1, sum2
}

// Transition applies the five conditions.
func (b *BSFKL) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	sum1, sum2 := b.sums(neighbours)
	switch state {
	case 0:
		if b.Birth.Has(sum1) && b.Forcing.Has(sum2) {
			return 1
		}
		return 0
	case 1:
		switch {
		case b.Killing.Has(sum2):
			return 0
		case b.Survival.Has(sum1):
			return 1
		}
		return 2
	default:
		if b.Living.Has(sum1) {
			return 0
		}
		return 2
	}
}

type bsfklSets struct {
	birth, survival, forcing, killing, living Transitions
}

func (b *BSFKL) sets() bsfklSets {
	return bsfklSets{b.Birth, b.Survival, b.Forcing, b.Killing, b.Living}
}

func (b *BSFKL) withSets(s bsfklSets) *BSFKL {
	out := b.Clone().(*BSFKL)
	out.Birth, out.Survival, out.Forcing = s.birth.Clone(), s.survival.Clone(), s.forcing.Clone()
	out.Killing, out.Living = s.killing.Clone(), s.living.Clone()
	return out
}

// MinMax infers the range of all five conditions. A cell that stayed dead
// only rules out B when its sum2 is known to be forcing, and vice versa.
func (b *BSFKL) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	full := func() Transitions { return Span(0, b.MaxCount) }
	lo := bsfklSets{NewTransitions(), NewTransitions(), NewTransitions(), NewTransitions(), NewTransitions()}
	hi := bsfklSets{full(), full(), full(), full(), full()}
	type pair struct{ sum1, sum2 int }
	var unborn []pair
	rules.Observe(b, grids, func(o rules.Observation) {
		sum1, sum2 := b.sums(o.Neighbours)
		switch {
		case o.State == 0 && o.Next == 1:
			lo.birth[sum1] = struct{}{}
			lo.forcing[sum2] = struct{}{}
		case o.State == 0:
			unborn = append(unborn, pair{sum1, sum2})
		case o.State == 1 && o.Next == 1:
			lo.survival[sum1] = struct{}{}
			delete(hi.killing, sum2)
		case o.State == 1 && o.Next == 0:
			lo.killing[sum2] = struct{}{}
		case o.State == 1:
			delete(hi.survival, sum1)
			delete(hi.killing, sum2)
		case o.Next == 0:
			lo.living[sum1] = struct{}{}
		default:
			delete(hi.living, sum1)
		}
	})
	for _, p := range unborn {
		if lo.forcing.Has(p.sum2) {
			delete(hi.birth, p.sum1)
		}
		if lo.birth.Has(p.sum1) {
			delete(hi.forcing, p.sum2)
		}
	}
	return b.withSets(lo), b.withSets(hi), nil
}

func (b *BSFKL) pair(minRule, maxRule rules.Rule) (bsfklSets, bsfklSets, bool) {
	lo, ok1 := minRule.(*BSFKL)
	hi, ok2 := maxRule.(*BSFKL)
	if !ok1 || !ok2 {
		return bsfklSets{}, bsfklSets{}, false
	}
	return lo.sets(), hi.sets(), true
}

func (s bsfklSets) subsetOf(o bsfklSets) bool {
	return s.birth.SubsetOf(o.birth) && s.survival.SubsetOf(o.survival) &&
		s.forcing.SubsetOf(o.forcing) && s.killing.SubsetOf(o.killing) &&
		s.living.SubsetOf(o.living)
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (b *BSFKL) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := b.pair(minRule, maxRule)
	return ok && lo.subsetOf(hi)
}

// Between reports whether b lies between minRule and maxRule.
func (b *BSFKL) Between(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := b.pair(minRule, maxRule)
	return ok && lo.subsetOf(b.sets()) && b.sets().subsetOf(hi)
}

// Randomise returns a random rule between minRule and maxRule.
func (b *BSFKL) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	lo, hi, ok := b.pair(minRule, maxRule)
	if !ok || !lo.subsetOf(hi) {
		return nil, fmt.Errorf("bsfkl: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	r := newRandomiser(rng)
	return b.withSets(bsfklSets{
		birth:    r.between(lo.birth, hi.birth),
		survival: r.between(lo.survival, hi.survival),
		forcing:  r.between(lo.forcing, hi.forcing),
		killing:  r.between(lo.killing, hi.killing),
		living:   r.between(lo.living, hi.living),
	}), nil
}
