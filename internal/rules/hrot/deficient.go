package hrot

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
	"casearch/internal/rules/ruletable"
	pcore "casearch/pkg/core"
)

var deficientRe = regexp.MustCompile(`^R(\d+),D([01]),S` + trans + `B` + trans + nbhdSpec + `$`)

// Deficient is an HROT rule where each birth condition gives the newborn
// cell its own state, and no cell is born through a condition one of its
// neighbours was born through. With Permanent set the state sticks for the
// cell's lifetime, otherwise survivors revert to state 1.
type Deficient struct {
	birthSurvival
	Permanent bool

	stateOf map[int]int
}

// ParseDeficient parses R2,D0,S6-9,B7-8,NM style rulestrings.
func ParseDeficient(body string) (*Deficient, error) {
	m := deficientRe.FindStringSubmatch(body)
	if m == nil {
		return nil, rules.Invalid(body, body, "not a deficient HROT rulestring")
	}
	r, err := strconv.Atoi(m[1])
	if err != nil || r < 1 {
		return nil, rules.Invalid(body, "R"+m[1], "range must be positive")
	}
	d := &Deficient{Permanent: m[2] == "1"}
	if d.Survival, err = parseCommas(body, m[3]); err != nil {
		return nil, err
	}
	if d.Birth, err = parseCommas(body, m[4]); err != nil {
		return nil, err
	}
	d.Form = formRange
	if err := d.load(body, m[5], r); err != nil {
		return nil, err
	}
	if d.Cells == nil {
		return nil, rules.Invalid(body, m[5], "empty neighbourhood")
	}
	for _, t := range []Transitions{d.Survival, d.Birth} {
		if err := checkSums(body, t, d.MaxCount); err != nil {
			return nil, err
		}
	}
	d.update()
	return d, nil
}

// update numbers the deficient states and recomputes the background.
func (d *Deficient) update() {
	d.stateOf = make(map[int]int)
	d.States = 2
	for _, t := range d.Birth.Sorted() {
		d.stateOf[t] = d.States
		d.States++
	}
	switch {
	case !d.Birth.Has(0):
		d.BG, d.Period = []int{0}, 1
	case d.Survival.Has(d.MaxCount) && d.Permanent:
		d.BG, d.Period = []int{1}, 1
	case d.Survival.Has(d.MaxCount):
		d.BG, d.Period = []int{d.stateOf[0]}, 1
	default:
		d.BG, d.Period = []int{0, d.stateOf[0]}, 2
	}
}

// StateOf returns the state a cell born on sum takes.
func (d *Deficient) StateOf(sum int) (int, bool) {
	s, ok := d.stateOf[sum]
	return s, ok
}

// Name returns "DeficientHROT".
func (d *Deficient) Name() string { return "DeficientHROT" }

// Rulestring returns the canonical rulestring.
func (d *Deficient) Rulestring() string {
	perm := 0
	if d.Permanent {
		perm = 1
	}
	return fmt.Sprintf("R%d,D%d,S%sB%s%s", d.Range, perm, d.Survival.Commas(), d.Birth.Commas(), d.Spec) + d.Suffix()
}

// Clone deep-copies the rule.
func (d *Deficient) Clone() rules.Rule {
	cp := &Deficient{birthSurvival: d.cloneBS(), Permanent: d.Permanent}
	cp.update()
	return cp
}

// Describe lists the rule parameters.
func (d *Deficient) Describe() core.ParameterSnapshot {
	snap := d.describe("Deficient HROT")
	snap.Groups[0].Params = append(snap.Groups[0].Params, core.Parameter{
		Key: "permanent", Label: "Permanent deficiency", Type: core.ParamTypeString, Value: strconv.FormatBool(d.Permanent),
	})
	return snap
}

// SetTransitions replaces birth and survival, renumbering the states.
func (d *Deficient) SetTransitions(birth, survival Transitions) {
	d.Birth, d.Survival = birth.Clone(), survival.Clone()
	d.update()
}

func (d *Deficient) live(neighbours []int) int {
	return d.sum(neighbours, func(state int) bool { return state != 0 })
}

// forbidden reports whether a neighbour was born through sum.
func (d *Deficient) forbidden(neighbours []int, sum int) bool {
	born, ok := d.stateOf[sum]
	return ok && slices.Contains(neighbours, born)
}

// Transition applies deficient birth and survival.
func (d *Deficient) Transition(neighbours []int, state, _ int, _ core.Coordinate) int {
	sum := d.live(neighbours)
	switch {
	case state == 0:
		if d.Birth.Has(sum) && !d.forbidden(neighbours, sum) {
			return d.stateOf[sum]
		}
	case d.Survival.Has(sum):
		if d.Permanent {
			return state
		}
		return 1
	}
	return 0
}

// MinMax infers the birth and survival range consistent with grids. A
// cell kept dead by a neighbour's deficiency says nothing about birth.
func (d *Deficient) MinMax(grids []*core.Grid) (rules.Rule, rules.Rule, error) {
	minB, minS := NewTransitions(), NewTransitions()
	maxB, maxS := Span(0, d.MaxCount), Span(0, d.MaxCount)
	rules.Observe(d, grids, func(o rules.Observation) {
		sum := d.live(o.Neighbours)
		switch {
		case o.State == 0 && o.Next != 0:
			minB[sum] = struct{}{}
		case o.State == 0 && !d.forbidden(o.Neighbours, sum):
			delete(maxB, sum)
		case o.State != 0 && o.Next != 0:
			minS[sum] = struct{}{}
		case o.State != 0:
			delete(maxS, sum)
		}
	})
	minRule, maxRule := d.Clone().(*Deficient), d.Clone().(*Deficient)
	minRule.SetTransitions(minB, minS)
	maxRule.SetTransitions(maxB, maxS)
	return minRule, maxRule, nil
}

func (d *Deficient) pair(minRule, maxRule rules.Rule) (*Deficient, *Deficient, bool) {
	lo, ok1 := minRule.(*Deficient)
	hi, ok2 := maxRule.(*Deficient)
	return lo, hi, ok1 && ok2 && lo.Permanent == d.Permanent && hi.Permanent == d.Permanent
}

// ValidMinMax reports whether minRule is contained in maxRule.
func (d *Deficient) ValidMinMax(minRule, maxRule rules.Rule) bool {
	lo, hi, ok := d.pair(minRule, maxRule)
	return ok && lo.Birth.SubsetOf(hi.Birth) && lo.Survival.SubsetOf(hi.Survival)
}

// Between reports whether d lies between minRule and maxRule.
func (d *Deficient) Between(minRule, maxRule rules.Rule) bool {
	if !d.ValidMinMax(minRule, maxRule) {
		return false
	}
	lo, hi, _ := d.pair(minRule, maxRule)
	return lo.Birth.SubsetOf(d.Birth) && lo.Survival.SubsetOf(d.Survival) &&
		d.Birth.SubsetOf(hi.Birth) && d.Survival.SubsetOf(hi.Survival)
}

// Randomise returns a random rule between minRule and maxRule.
func (d *Deficient) Randomise(minRule, maxRule rules.Rule, rng *pcore.RNG) (rules.Rule, error) {
	if !d.ValidMinMax(minRule, maxRule) {
		return nil, fmt.Errorf("deficient: randomise %s..%s: %w", minRule.Rulestring(), maxRule.Rulestring(), rules.ErrInvalidRule)
	}
	lo, hi, _ := d.pair(minRule, maxRule)
	r := newRandomiser(rng)
	out := d.Clone().(*Deficient)
	out.SetTransitions(r.between(lo.Birth, hi.Birth), r.between(lo.Survival, hi.Survival))
	return out, nil
}

// Ruletable exports the rule with permute symmetry. Each birth condition
// reads its neighbours through a variable that excludes its own state.
func (d *Deficient) Ruletable() (*ruletable.Table, error) {
	if d.Weights != nil || d.Birth.Has(0) {
		return nil, rules.Unsupported(d.Name(), "ruletable export")
	}
	t := ruletable.NewTable(d.States, slices.Clone(d.Cells))
	t.Tile = d.Tile
	if err := t.SetSymmetry("permute"); err != nil {
		return nil, err
	}
	all := &ruletable.Variable{Name: "any", Unbound: true}
	live := &ruletable.Variable{Name: "live", Unbound: true}
	for s := 0; s < d.States; s++ {
		all.Values = append(all.Values, s)
		if s > 0 {
			live.Values = append(live.Values, s)
		}
	}
	t.AddVariable(all)
	t.AddVariable(live)

	for _, n := range d.Birth.Sorted() {
		born := d.stateOf[n]
		v := &ruletable.Variable{Name: "d" + strconv.Itoa(n), Unbound: true}
		for _, s := range live.Values {
			if s != born {
				v.Values = append(v.Values, s)
			}
		}
		t.AddVariable(v)
		if err := t.AddOuterTotalistic(n, "0", strconv.Itoa(born), "0", v.Name); err != nil {
			return nil, err
		}
	}
	for s := 1; s < d.States; s++ {
		out := "1"
		if d.Permanent {
			out = strconv.Itoa(s)
		}
		for _, n := range d.Survival.Sorted() {
			if err := t.AddOuterTotalistic(n, strconv.Itoa(s), out, "0", "live"); err != nil {
				return nil, err
			}
		}
	}
	for s := 1; s < d.States; s++ {
		if err := t.AddOuterTotalistic(0, strconv.Itoa(s), "0", "any", "any"); err != nil {
			return nil, err
		}
	}
	return t, nil
}
