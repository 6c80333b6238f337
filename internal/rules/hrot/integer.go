package hrot

import (
	"fmt"
	"regexp"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var integerRe = regexp.MustCompile(`^R(\d+),I(\d+),S` + trans + `B` + trans + nbhdSpec + `$`)

// Integer is Integer Life generalised to HROT neighbourhoods. Neighbours
// contribute their state to the sum. A dead cell is born as sum/t for the
// smallest birth condition t dividing the sum, and a cell of state s
// survives when floor(sum/s) is a survival condition.
type Integer struct {
	birthSurvival
	birth []int
}

// ParseInteger parses R2,I20,S2-3,B3,NM style rulestrings.
func ParseInteger(body string) (*Integer, error) {
	m := integerRe.FindStringSubmatch(body)
	if m == nil {
		return nil, rules.Invalid(body, body, "not an integer HROT rulestring")
	}
	r, err := strconv.Atoi(m[1])
	if err != nil || r < 1 {
		return nil, rules.Invalid(body, "R"+m[1], "range must be positive")
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 2 {
		return nil, rules.Invalid(body, "I"+m[2], "need at least two states")
	}
	in := &Integer{}
	in.States = n
	if in.Survival, err = parseCommas(body, m[3]); err != nil {
		return nil, err
	}
	if in.Birth, err = parseCommas(body, m[4]); err != nil {
		return nil, err
	}
	if in.Birth.Has(0) {
		return nil, rules.Invalid(body, "B0", "B0 is not supported")
	}
	in.Form = formRange
	if err := in.load(body, m[5], r); err != nil {
		return nil, err
	}
	if in.Cells == nil {
		return nil, rules.Invalid(body, m[5], "empty neighbourhood")
	}
	for _, t := range []Transitions{in.Survival, in.Birth} {
		if err := checkSums(body, t, in.maxSum()); err != nil {
			return nil, err
		}
	}
	in.update()
	return in, nil
}

func (in *Integer) update() {
	in.birth = in.Birth.Sorted()
	in.BG, in.Period = []int{0}, 1
}

// maxSum is the largest sum a neighbourhood of full-state cells reaches.
func (in *Integer) maxSum() int { return in.MaxCount * (in.States - 1) }

// Name returns "IntegerHROT".
func (in *Integer) Name() string { return "IntegerHROT" }

// Rulestring returns the canonical rulestring.
func (in *Integer) Rulestring() string {
	return fmt.Sprintf("R%d,I%d,S%sB%s%s", in.Range, in.States, in.Survival.Commas(), in.Birth.Commas(), in.Spec) + in.Suffix()
}

// Clone deep-copies the rule.
func (in *Integer) Clone() rules.Rule {
	cp := &Integer{birthSurvival: in.cloneBS()}
	cp.update()
	return cp
}

// Describe lists the rule parameters.
func (in *Integer) Describe() core.ParameterSnapshot { return in.describe("Integer HROT") }

// SetTransitions replaces birth and survival.
func (in *Integer) SetTransitions(birth, survival Transitions) {
	in.Birth, in.Survival = birth.Clone(), survival.Clone()
	in.update()
}

func (in *Integer) total(neighbours []int) int {
	s := 0
	for i, v := range neighbours {
		s += v * in.weight(i)
	}
	return s
}

// born returns the state a dead cell with the given sum is born into,
// 0 for none, using the smallest matching condition.
func (in *Integer) born(sum int, conditions []int) int {
	if sum == 0 {
		return 0
	}
	for _, t := range conditions {
		if t > 0 && sum%t == 0 && sum/t > 0 && sum/t < in.States {
			return sum / t
		}
	}
	return 0
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Transition applies integer birth and survival.
func (in *Integer) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	sum := in.total(neighbours)
	if state == 0 {
		return in.born(sum, in.birth)
	}
	if in.Survival.Has(floorDiv(sum, state)) {
		return state
	}
	return 0
}

// MinMax infers the birth and survival range consistent with grids.
func (in *Integer) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	minB, minS := NewTransitions(), NewTransitions()
	maxB, maxS := Span(1, in.maxSum()), Span(0, in.maxSum())
	rules.Observe(in, grids, func(o rules.Observation) {
		sum := in.total(o.Neighbours)
		switch {
		case o.State == 0 && o.Next != 0:
			if sum > 0 && sum%o.Next == 0 {
				minB[sum/o.Next] = struct{}{}
			}
		case o.State == 0:
			for _, t := range maxB.Sorted() {
				if in.born(sum, []int{t}) != 0 {
					delete(maxB, t)
				}
			}
		case o.Next == o.State:
			minS[floorDiv(sum, o.State)] = struct{}{}
		case o.Next == 0:
			delete(maxS, floorDiv(sum, o.State))
		}
	})
	minRule, maxRule := in.Clone().(*Integer), in.Clone().(*Integer)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (in *Integer) pair(minRule, maxRule rules.Rule) (*Integer, *Integer, bool) {
	lo, ok1 := minRule.(*Integer)
	hi, ok2 := maxRule.(*Integer)
	return lo, hi, ok1 && ok2 && lo.States == in.States && hi.States == in.States
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (in *Integer) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := in.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether in lies between minRule and maxRule.
func (in *Integer) Between(minRule, maxRule rules.Rule) bool {
	if !in.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := in.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(in.Birth) && lo.Survival.SubsetOf(in.Survival) &&
		in.Birth.SubsetOf(hi.Birth) && in.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (in *Integer) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !in.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("integer: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := in.pair(minRule, maxRule)
	r := newRandomiser(rng)
	out := in.Clone().(*Integer)
	out.SetTransitions(r.between(lo.Birth, hi.Birth), r.between(lo.Survival, hi.Survival))
	return out, nil
}
