// Package oned implements one-dimensional Wolfram rules. Each generation
// writes the row below the previous one, so a pattern unrolls into its
// space-time diagram.
package oned

import (
	"fmt"
	"math/big"
	"regexp"
	"slices"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
)

// Priority orders 1D rules among the registered families.
const Priority = 41

// maxTable bounds states^(2*range+1), the number of neighbourhoods.
const maxTable = 1 << 20

var (
	wolframRe = regexp.MustCompile(`^W(\d+)$`)
	rangedRe  = regexp.MustCompile(`^R([1-9]\d*),C([2-9]|[1-9]\d+),W(\d+)$`)
)

// OneD is a Wolfram rule of some range over some number of states.
type OneD struct {
	rules.Base
	Range  int
	Number *big.Int
	ranged bool
	cells  []core.Coordinate
	// table[i] is the successor of the neighbourhood whose base-States
	// digits, most significant first, spell i.
	table []int
}

// Parse reads W110 or R1,C3,W14584.
func Parse(body string) (*OneD, error) {
	r := &OneD{Range: 1}
	var number string
	r.States = 2
	if m := wolframRe.FindStringSubmatch(body); m != nil {
		number = m[1]
	} else if m := rangedRe.FindStringSubmatch(body); m != nil {
		r.Range, _ = strconv.Atoi(m[1])
		r.States, _ = strconv.Atoi(m[2])
		number = m[3]
		r.ranged = true
	} else {
		return nil, rules.Invalid(body, body, "want W<n> or R<r>,C<n>,W<n>")
	}

	size := 1
	for i := 0; i < 2*r.Range+1; i++ {
		size *= r.States
		if size > maxTable {
			return nil, rules.Invalid(body, body, "%d states at range %d is too large", r.States, r.Range)
		}
	}
	r.Number, _ = new(big.Int).SetString(number, 10)
	limit := new(big.Int).Exp(big.NewInt(int64(r.States)), big.NewInt(int64(size)), nil)
	if r.Number.Cmp(limit) >= 0 {
		return nil, rules.Invalid(body, "W"+number, "rule number must be below %d^%d", r.States, size)
	}

	r.table = make([]int, size)
	n := new(big.Int).Set(r.Number)
	base := big.NewInt(int64(r.States))
	digit := new(big.Int)
	for i := range r.table {
		n.DivMod(n, base, digit)
		r.table[i] = int(digit.Int64())
	}

	for x := -r.Range; x <= r.Range; x++ {
		r.cells = append(r.cells, core.Coordinate{X: x, Y: -1})
	}
	r.updateBackground()
	return r, nil
}

// MustParse is Parse for rulestrings known to be valid.
func MustParse(body string) *OneD {
	r, err := Parse(body)
	if err != nil {
		panic(err)
	}
	return r
}

// updateBackground follows a row of identical cells from state 0 until it
// repeats; the cycle it falls into is the background.
func (r *OneD) updateBackground() {
	var seen []int
	s := 0
	for !slices.Contains(seen, s) {
		seen = append(seen, s)
		s = r.table[r.uniform(s)]
	}
	r.BG = slices.Clone(seen[slices.Index(seen, s):])
	r.Period = len(r.BG)
}

// uniform is the table index of a neighbourhood with every cell in state s.
func (r *OneD) uniform(s int) int {
	i := 0
	for range r.cells {
		i = i*r.States + s
	}
	return i
}

// Name returns "OneDimensional".
func (r *OneD) Name() string { return "OneDimensional" }

// Rulestring returns the canonical rulestring.
func (r *OneD) Rulestring() string {
	if !r.ranged {
		return "W" + r.Number.String() + r.Suffix()
	}
	return fmt.Sprintf("R%d,C%d,W%s", r.Range, r.States, r.Number.String()) + r.Suffix()
}

// Clone deep-copies the rule. The table is shared.
func (r *OneD) Clone() rules.Rule {
	cp := *r
	cp.Base = r.CloneBase()
	cp.Number = new(big.Int).Set(r.Number)
	return &cp
}

// Neighbourhood returns the cells of the row above.
func (r *OneD) Neighbourhood(int) []core.Coordinate { return r.cells }

// Independent keeps cells that are already written.
func (r *OneD) Independent(state, _ int, _ core.Coordinate) (int, bool) {
	if state != 0 {
		return state, true
	}
	return 0, false
}

// Transition reads the row above as a base-States number.
func (r *OneD) Transition(neighbours []int, _, _ int, _ core.Coordinate) int {
	i := 0
	for _, v := range neighbours {
		i = i*r.States + v
	}
	return r.table[i]
}

// Describe lists the rule parameters.
func (r *OneD) Describe() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "OneDimensional",
		Params: []core.Parameter{
			{Key: "rule", Label: "Rule", Type: core.ParamTypeString, Value: r.Number.String()},
			{Key: "range", Label: "Range", Type: core.ParamTypeInt, Value: strconv.Itoa(r.Range)},
			{Key: "states", Label: "States", Type: core.ParamTypeInt, Value: strconv.Itoa(r.States)},
		},
		Summary: fmt.Sprintf("%d neighbourhoods", len(r.table)),
	}}}
}

func init() {
	rules.Register(rules.Family{
		Name:     "OneDimensional",
		Priority: Priority,
		Patterns: []*regexp.Regexp{wolframRe, rangedRe},
		Parse:    func(body string) (rules.Rule, error) { return Parse(body) },
	})
}
