// Package margolus implements block cellular automata on the Margolus
// neighbourhood: the plane is cut into 2x2 blocks whose alignment shifts by
// one cell every generation, and each block is replaced as a whole.
package margolus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"casearch/internal/core"
	"casearch/internal/rules"
)

// Priority orders Margolus among the registered families.
const Priority = 40

var ruleRe = regexp.MustCompile(`^M((?:\d+,){15}\d+)$`)

// Block bit of each cell relative to the block origin.
var blockCells = [4]core.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}

// Margolus maps each of the 16 block configurations to a new one.
type Margolus struct {
	rules.Base
	Table [16]int
}

// Parse reads M followed by 16 comma-separated block values.
func Parse(body string) (*Margolus, error) {
	m := ruleRe.FindStringSubmatch(body)
	if m == nil {
		return nil, rules.Invalid(body, body, "want M and 16 comma-separated values")
	}
	r := &Margolus{}
	for i, tok := range strings.Split(m[1], ",") {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 || v > 15 {
			return nil, rules.Invalid(body, tok, "block values run from 0 to 15")
		}
		r.Table[i] = v
	}
	r.States = 2
	if err := r.updateBackground(); err != nil {
		return nil, rules.Invalid(body, m[1][:strings.IndexByte(m[1], ',')], "%v", err)
	}
	return r, nil
}

// MustParse is Parse for rulestrings known to be valid.
func MustParse(body string) *Margolus {
	r, err := Parse(body)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Margolus) updateBackground() error {
	r.Period = 2
	switch r.Table[0] {
	case 0:
		r.BG = []int{0, 0}
	case 15:
		if r.Table[15] == 15 {
			r.BG = []int{1, 1}
		} else {
			r.BG = []int{0, 1}
		}
	default:
		return fmt.Errorf("strobing rules need block 0 to map to 0 or 15, not %d", r.Table[0])
	}
	return nil
}

// Name returns "Margolus".
func (r *Margolus) Name() string { return "Margolus" }

// Rulestring returns the canonical rulestring.
func (r *Margolus) Rulestring() string {
	parts := make([]string, len(r.Table))
	for i, v := range r.Table {
		parts[i] = strconv.Itoa(v)
	}
	return "M" + strings.Join(parts, ",") + r.Suffix()
}

// Clone deep-copies the rule.
func (r *Margolus) Clone() rules.Rule {
	return &Margolus{Base: r.CloneBase(), Table: r.Table}
}

// Neighbourhood returns the cells that can share a block with a cell.
func (r *Margolus) Neighbourhood(int) []core.Coordinate { return rules.Moore(1) }

// Origin returns the top-left cell of the block holding c in generation
// gen. Blocks sit at even offsets on even generations and odd offsets on
// odd ones.
func Origin(c core.Coordinate, gen int) core.Coordinate {
	shift := core.FloorMod(gen, 2)
	return core.Coordinate{
		X: c.X - core.FloorMod(c.X-shift, 2),
		Y: c.Y - core.FloorMod(c.Y-shift, 2),
	}
}

// mooreIndex is the position of offset d in rules.Moore(1).
func mooreIndex(d core.Coordinate) int {
	i := (d.X+1)*3 + d.Y + 1
	if i > 4 {
		i--
	}
	return i
}

// Transition computes one cell of its block's successor. neighbours are
// listed in Neighbourhood order.
func (r *Margolus) Transition(neighbours []int, state, gen int, cell core.Coordinate) int {
	o := Origin(cell, gen)
	block, self := 0, 0
	for bit, d := range blockCells {
		c := o.Add(d)
		v := state
		if c == cell {
			self = bit
		} else {
			v = neighbours[mooreIndex(c.Sub(cell))]
		}
		if v != 0 {
			block |= 1 << bit
		}
	}
	return r.Table[block] >> self & 1
}

// Step replaces every block touched by the history ring.
func (r *Margolus) Step(grid *core.Grid, hist *rules.History, gen int, include func(core.Coordinate) bool) {
	bound := r.Bounded()
	origins := make(map[core.Coordinate]struct{})
	for c := range hist.Frontier(include) {
		origins[Origin(c, gen)] = struct{}{}
	}

	snapshot := grid.Clone()
	for o := range origins {
		var cells [4]core.Coordinate
		var live [4]bool
		block := 0
		for bit, d := range blockCells {
			c, ok := bound.Map(o.Add(d))
			cells[bit], live[bit] = c, ok
			stored := 0
			if ok {
				stored = snapshot.Get(c)
			}
			if rules.ConvertState(r, stored, gen) != 0 {
				block |= 1 << bit
			}
		}
		next := r.Table[block]
		for bit, c := range cells {
			if !live[bit] {
				continue
			}
			state := rules.ConvertState(r, next>>bit&1, gen+1)
			if state != snapshot.Get(c) {
				grid.Set(c, state)
				hist.Touch(c)
			} else {
				hist.Settle(c)
			}
		}
	}
}

// Reversible reports whether the table is a permutation of the blocks.
func (r *Margolus) Reversible() bool {
	var seen [16]bool
	for _, v := range r.Table {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// Inverse returns the rule that undoes one generation of r when stepped
// with the same generation number.
func (r *Margolus) Inverse() (*Margolus, error) {
	if !r.Reversible() {
		return nil, rules.Unsupported(r.Name(), "inverse of an irreversible rule")
	}
	inv := &Margolus{Base: r.CloneBase()}
	for i, v := range r.Table {
		inv.Table[v] = i
	}
	if err := inv.updateBackground(); err != nil {
		return nil, fmt.Errorf("margolus: inverse: %w", err)
	}
	return inv, nil
}

// Describe lists the block table.
func (r *Margolus) Describe() core.ParameterSnapshot {
	params := make([]core.Parameter, len(r.Table))
	for i, v := range r.Table {
		params[i] = core.Parameter{
			Key:   fmt.Sprintf("block%d", i),
			Label: fmt.Sprintf("%04b", i),
			Type:  core.ParamTypeInt,
			Value: strconv.Itoa(v),
		}
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name:    "Margolus",
		Params:  params,
		Summary: fmt.Sprintf("reversible: %t", r.Reversible()),
	}}}
}

func init() {
	rules.Register(rules.Family{
		Name:     "Margolus",
		Priority: Priority,
		Patterns: []*regexp.Regexp{ruleRe},
		Parse:    func(body string) (rules.Rule, error) { return Parse(body) },
	})
}
