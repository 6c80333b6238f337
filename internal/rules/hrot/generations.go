package hrot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var (
	generationsMooreRe = regexp.MustCompile(`^([0-8]*)/([0-8]*)/(\d+)$`)
	generationsRangeRe = regexp.MustCompile(`^R(\d+),C(\d+),S` + trans + `B` + trans + nbhdSpec + `(?:,([A-Fa-f0-9]+))?$`)
)

// Generations is an HROT rule whose cells decay through extra states
// instead of dying at once.
type Generations struct {
	birthSurvival
	// StateWeights, when set, weight each neighbour by its state as well as
	// its position. Only NW neighbourhoods accept them.
	StateWeights []int
}

// ParseGenerations parses 12/34/3 or R2,C4,S2-3,B3,NM[,weights].
func ParseGenerations(body string) (*Generations, error) {
	g := &Generations{}
	var states string
	if m := generationsMooreRe.FindStringSubmatch(body); m != nil {
		g.Survival, g.Birth = parseDigits(m[1]), parseDigits(m[2])
		g.Form = formMoore
		g.loadSymbol('M', 1)
		states = m[3]
	} else if m := generationsRangeRe.FindStringSubmatch(body); m != nil {
		r, err := strconv.Atoi(m[1])
		if err != nil || r < 1 {
			return nil, rules.Invalid(body, "R"+m[1], "range must be positive")
		}
		states = m[2]
		if g.Survival, err = parseCommas(body, m[3]); err != nil {
			return nil, err
		}
		if g.Birth, err = parseCommas(body, m[4]); err != nil {
			return nil, err
		}
		g.Form = formRange
		if err := g.load(body, m[5], r); err != nil {
			return nil, err
		}
		if g.Cells == nil {
			return nil, rules.Invalid(body, m[5], "empty neighbourhood")
		}
		if m[6] != "" {
			if !strings.HasPrefix(m[5], "NW") {
				return nil, rules.Invalid(body, m[6], "state weights need an NW neighbourhood")
			}
			g.StateWeights = make([]int, len(m[6]))
			for i, c := range m[6] {
				w, _ := strconv.ParseInt(string(c), 16, 0)
				g.StateWeights[i] = int(w)
			}
		}
	} else {
		return nil, rules.Invalid(body, body, "not a generations rulestring")
	}
	n, err := strconv.Atoi(states)
	if err != nil || n < 2 {
		return nil, rules.Invalid(body, "C"+states, "need at least two states")
	}
	if g.StateWeights != nil && len(g.StateWeights) != n {
		return nil, rules.Invalid(body, body, "expected %d state weights, got %d", n, len(g.StateWeights))
	}
	g.States = n
	for _, t := range []Transitions{g.Survival, g.Birth} {
		if err := checkSums(body, t, g.maxSum()); err != nil {
			return nil, err
		}
	}
	g.updateB0(n)
	return g, nil
}

// Name returns "Generations".
func (g *Generations) Name() string { return "Generations" }

// Rulestring returns the canonical rulestring.
func (g *Generations) Rulestring() string {
	if g.Form == formMoore {
		return fmt.Sprintf("%s/%s/%d", g.Survival.Digits(), g.Birth.Digits(), g.States) + g.Suffix()
	}
	s := fmt.Sprintf("R%d,C%d,S%sB%s%s", g.Range, g.States, g.Survival.Commas(), g.Birth.Commas(), g.Spec)
	if g.StateWeights != nil {
		s += ","
		for _, w := range g.StateWeights {
			s += strconv.FormatInt(int64(w), 16)
		}
	}
	return s + g.Suffix()
}

// Clone deep-copies the rule.
func (g *Generations) Clone() rules.Rule {
	cp := &Generations{birthSurvival: g.cloneBS()}
	if g.StateWeights != nil {
		cp.StateWeights = append([]int(nil), g.StateWeights...)
	}
	return cp
}

// Describe lists the rule parameters.
func (g *Generations) Describe() core.ParameterSnapshot { return g.describe("Generations") }

// SetTransitions replaces birth and survival and recomputes the background.
func (g *Generations) SetTransitions(birth, survival Transitions) {
	g.Birth, g.Survival = birth.Clone(), survival.Clone()
	g.updateB0(g.States)
}

// Independent advances dying cells.
func (g *Generations) Independent(state, _ int, _ core.Coordinate) (int, bool) {
	if state >= 2 {
		return (state + 1) % g.States, true
	}
	return 0, false
}

func (g *Generations) count(neighbours []int) int {
	s := 0
	for i, v := range neighbours {
		switch {
		case g.StateWeights != nil:
			s += g.StateWeights[v] * g.weight(i)
		case v == 1:
			s += g.weight(i)
		}
	}
	return s
}

// Transition applies birth and survival, sending surviving-failed cells
// into decay.
func (g *Generations) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	switch state {
	case 0:
		if g.Birth.Has(g.count(neighbours)) {
			return 1
		}
		return 0
	case 1:
		if g.Survival.Has(g.count(neighbours)) {
			return 1
		}
	}
	return (state + 1) % g.States
}

func (g *Generations) maxSum() int {
	top := 1
	for _, w := range g.StateWeights {
		top = max(top, w)
	}
	return g.MaxCount * top
}

// MinMax infers the birth and survival range consistent with grids.
func (g *Generations) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	minB, minS := NewTransitions(), NewTransitions()
	maxB, maxS := Span(0, g.maxSum()), Span(0, g.maxSum())
	rules.Observe(g, grids, func(o rules.Observation) {
		s := g.count(o.Neighbours)
		switch {
		case o.State == 0 && o.Next == 1:
			minB[s] = struct{}{}
		case o.State == 0:
			delete(maxB, s)
		case o.State == 1 && o.Next == 1:
			minS[s] = struct{}{}
		case o.State == 1:
			delete(maxS, s)
		}
	})
	minRule, maxRule := g.Clone().(*Generations), g.Clone().(*Generations)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (g *Generations) pair(minRule, maxRule rules.Rule) (*Generations, *Generations, bool) {
	lo, ok1 := minRule.(*Generations)
	hi, ok2 := maxRule.(*Generations)
	return lo, hi, ok1 && ok2 && lo.States == g.States && hi.States == g.States
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (g *Generations) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := g.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether g lies between minRule and maxRule.
func (g *Generations) Between(minRule, maxRule rules.Rule) bool {
	if !g.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := g.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(g.Birth) && lo.Survival.SubsetOf(g.Survival) &&
		g.Birth.SubsetOf(hi.Birth) && g.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (g *Generations) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !g.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("generations: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := g.pair(minRule, maxRule)
	r := newRandomiser(rng)
	out := g.Clone().(*Generations)
	out.SetTransitions(r.between(lo.Birth, hi.Birth), r.between(lo.Survival, hi.Survival))
	return out, nil
}
