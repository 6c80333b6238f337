package isotropic

import (
	"fmt"
	"regexp"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var (
	mooreRe = regexp.MustCompile(`^[Bb]` + singleTransitions + `[_/]?[Ss]` + singleTransitions + `$`)
	vn2Re   = regexp.MustCompile(`^[Bb]` + doubleTransitions + `[_/]?[Ss]` + doubleTransitions + `[_/]?N?V2$`)
)

// INT is a two-state isotropic non-totalistic rule.
type INT struct {
	rules.Base
	lookup   *Lookup
	Birth    Transitions
	Survival Transitions
}

// ParseINT parses B2n3/S23-q (range-1 Moore) or B2ac3x/S1x/NV2
// (range-2 von Neumann).
func ParseINT(body string) (*INT, error) {
	l := Moore()
	m := mooreRe.FindStringSubmatch(body)
	if m == nil {
		l = VonNeumann2()
		m = vn2Re.FindStringSubmatch(body)
	}
	if m == nil {
		return nil, rules.Invalid(body, body, "not an isotropic rulestring")
	}
	birth, err := l.Parse(m[1])
	if err != nil {
		return nil, rules.Invalid(body, "B"+m[1], "%v", err)
	}
	survival, err := l.Parse(m[2])
	if err != nil {
		return nil, rules.Invalid(body, "S"+m[2], "%v", err)
	}
	r := &INT{lookup: l, Birth: birth, Survival: survival}
	r.States = 2
	r.updateBackground()
	return r, nil
}

// MustParseINT is ParseINT for rulestrings known to be valid.
func MustParseINT(body string) *INT {
	r, err := ParseINT(body)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the transition names the rule is written in.
func (r *INT) Lookup() *Lookup { return r.lookup }

// B0 rules alternate with their complement unless the full neighbourhood
// survives, in which case the background stays on.
func (r *INT) updateBackground() {
	empty := r.lookup.Classify(make([]int, len(r.lookup.cells)))
	full := make([]int, len(r.lookup.cells))
	for i := range full {
		full[i] = 1
	}
	switch {
	case !r.Birth.Has(empty):
		r.BG, r.Period = []int{0}, 1
	case r.Survival.Has(r.lookup.Classify(full)):
		r.BG, r.Period = []int{1}, 1
	default:
		r.BG, r.Period = []int{0, 1}, 2
	}
}

// Name returns "INT".
func (r *INT) Name() string { return "INT" }

func (r *INT) Neighbourhood(int) []core.Coordinate { return r.lookup.cells }

// Transition looks up the neighbourhood's class in birth or survival.
func (r *INT) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	c := r.lookup.Classify(neighbours)
	if state == 0 && r.Birth.Has(c) || state == 1 && r.Survival.Has(c) {
		return 1
	}
	return 0
}

// Rulestring returns the canonical rulestring.
func (r *INT) Rulestring() string {
	s := "B" + r.lookup.Format(r.Birth) + "/S" + r.lookup.Format(r.Survival)
	if r.lookup.suffix != "" {
		s += "/N" + r.lookup.suffix
	}
	return s + r.Suffix()
}

// Clone deep-copies the rule. The lookup is shared.
func (r *INT) Clone() rules.Rule {
	return &INT{
		Base:     r.CloneBase(),
		lookup:   r.lookup,
		Birth:    r.Birth.Clone(),
		Survival: r.Survival.Clone(),
	}
}

// SetTransitions replaces birth and survival and recomputes the background.
func (r *INT) SetTransitions(birth, survival Transitions) {
	r.Birth, r.Survival = birth.Clone(), survival.Clone()
	r.updateBackground()
}

// Describe lists the rule parameters.
func (r *INT) Describe() core.ParameterSnapshot {
	nbhd := "Moore"
	if r.lookup.suffix != "" {
		nbhd = r.lookup.suffix
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "INT",
		Params: []core.Parameter{
			{Key: "birth", Label: "Birth", Type: core.ParamTypeString, Value: r.lookup.Format(r.Birth)},
			{Key: "survival", Label: "Survival", Type: core.ParamTypeString, Value: r.lookup.Format(r.Survival)},
			{Key: "neighbourhood", Label: "Neighbourhood", Type: core.ParamTypeString, Value: nbhd},
			{Key: "transitions", Label: "Transitions", Type: core.ParamTypeInt, Value: strconv.Itoa(r.lookup.Len())},
		},
	}}}
}

// MinMax infers the birth and survival classes consistent with grids.
func (r *INT) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	return r.minMaxWithin(grids, r.lookup.All())
}

// minMaxWithin bounds the max rule by the candidate classes in universe.
func (r *INT) minMaxWithin(grids []*core.Grid, universe Transitions) (rules.Rule, rules.Rule, error) {
	minB, minS := make(Transitions), make(Transitions)
	maxB, maxS := universe.Clone(), universe.Clone()
	rules.Observe(r, grids, func(o rules.Observation) {
		c := r.lookup.Classify(o.Neighbours)
		switch {
		case o.State == 0 && o.Next == 1:
			minB[c] = struct{}{}
		case o.State == 0 && o.Next == 0:
			delete(maxB, c)
		case o.State == 1 && o.Next == 1:
			minS[c] = struct{}{}
		case o.State == 1 && o.Next == 0:
			delete(maxS, c)
		}
	})
	minRule, maxRule := r.Clone().(*INT), r.Clone().(*INT)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (r *INT) pair(minRule, maxRule rules.Rule) (*INT, *INT, bool) {
	lo, ok1 := minRule.(*INT)
	hi, ok2 := maxRule.(*INT)
	return lo, hi, ok1 && ok2 && lo.lookup == r.lookup && hi.lookup == r.lookup
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (r *INT) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := r.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether r lies between minRule and maxRule.
func (r *INT) Between(minRule, maxRule rules.Rule) bool {
	if !r.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := r.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(r.Birth) && lo.Survival.SubsetOf(r.Survival) &&
		r.Birth.SubsetOf(hi.Birth) && r.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (r *INT) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !r.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("isotropic: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := r.pair(minRule, maxRule)
	rnd := newRandomiser(rng)
	out := r.Clone().(*INT)
	out.SetTransitions(rnd.between(lo.Birth, hi.Birth), rnd.between(lo.Survival, hi.Survival))
	return out, nil
}
