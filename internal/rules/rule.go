// Package rules defines the rule interface shared by every cellular
// automaton family, the stepping engine that drives them and the registry
// that turns rulestrings into rules.
package rules

import (
	"slices"

	"casearch/internal/core"
	pcore "casearch/pkg/core"
)

// Tiling is the lattice a rule's neighbourhood is laid out on.
type Tiling int

const (
	// Square is the ordinary square lattice.
	Square Tiling = iota
	// Hexagonal maps hexagons onto a sheared square lattice.
	Hexagonal
	// Triangular alternates upward and downward triangles by parity.
	Triangular
)

func (t Tiling) String() string {
	switch t {
	case Hexagonal:
		return "hexagonal"
	case Triangular:
		return "triangular"
	default:
		return "square"
	}
}

// Rule is a parsed cellular automaton rule.
type Rule interface {
	// Name is the family name, e.g. "HROT".
	Name() string
	NumStates() int
	AlternatingPeriod() int
	// Background lists the background state per generation, cycling with
	// AlternatingPeriod.
	Background() []int
	Tiling() Tiling
	// Neighbourhood returns the offsets read by Transition in generation gen.
	Neighbourhood(gen int) []core.Coordinate
	// Transition returns the next state of a cell from its neighbours'
	// states, listed in Neighbourhood order.
	Transition(neighbours []int, state, gen int, cell core.Coordinate) int
	Bounded() *core.BoundedGrid
	SetBounded(b *core.BoundedGrid)
	ReadingOrder() ReadingOrder
	SetReadingOrder(o ReadingOrder)
	// Rulestring is the canonical rulestring, specifiers included.
	Rulestring() string
	Clone() Rule
}

// Independent is implemented by rules whose next state can sometimes be
// decided without reading neighbours.
type Independent interface {
	Independent(state, gen int, cell core.Coordinate) (int, bool)
}

// Stepper is implemented by rules that replace the synchronous engine.
type Stepper interface {
	Step(grid *core.Grid, hist *History, gen int, include func(core.Coordinate) bool)
}

// MinMaxRule is implemented by families that can infer the range of rules
// consistent with an evolution and sample from such a range.
type MinMaxRule interface {
	Rule
	// MinMax returns the narrowest and widest rules under which grids is
	// an exact evolution. Each grid carries its background.
	MinMax(grids []*core.Grid) (minRule, maxRule Rule, err error)
	// Between reports whether the receiver lies inside [minRule, maxRule].
	Between(minRule, maxRule Rule) bool
	// ValidMinMax reports whether minRule and maxRule bound a non-empty range.
	ValidMinMax(minRule, maxRule Rule) bool
	// Randomise returns a random rule from [minRule, maxRule].
	Randomise(minRule, maxRule Rule, rng *pcore.RNG) (Rule, error)
}

// Base carries the fields every family shares. Families embed it.
type Base struct {
	States int
	Period int
	BG     []int
	Tile   Tiling
	Bound  *core.BoundedGrid
	Order  ReadingOrder
}

// NumStates returns the number of cell states.
func (b *Base) NumStates() int { return b.States }

// AlternatingPeriod returns the background cycle length.
func (b *Base) AlternatingPeriod() int { return max(b.Period, 1) }

// Background returns the background cycle.
func (b *Base) Background() []int {
	if len(b.BG) == 0 {
		return []int{0}
	}
	return b.BG
}

// Tiling returns the lattice.
func (b *Base) Tiling() Tiling { return b.Tile }

// Bounded returns the bounded grid, nil when unbounded.
func (b *Base) Bounded() *core.BoundedGrid { return b.Bound }

// SetBounded replaces the bounded grid.
func (b *Base) SetBounded(bg *core.BoundedGrid) { b.Bound = bg }

// ReadingOrder returns the reading order, nil for synchronous updates.
func (b *Base) ReadingOrder() ReadingOrder { return b.Order }

// SetReadingOrder replaces the reading order.
func (b *Base) SetReadingOrder(o ReadingOrder) { b.Order = o }

// BackgroundAt returns the background state of generation gen.
func (b *Base) BackgroundAt(gen int) int {
	bg := b.Background()
	return bg[core.FloorMod(gen, len(bg))]
}

// Suffix renders the specifiers as they follow the rule body.
func (b *Base) Suffix() string {
	s := ""
	if b.Bound != nil {
		s += ":" + b.Bound.Specifier()
	}
	if b.Order != nil {
		s += ":" + b.Order.Name()
	}
	return s
}

// CloneBase deep-copies the shared fields.
func (b *Base) CloneBase() Base {
	cp := *b
	cp.BG = slices.Clone(b.BG)
	if b.Bound != nil {
		bound := *b.Bound
		cp.Bound = &bound
	}
	return cp
}

// BackgroundAt is the background state of rule r in generation gen.
func BackgroundAt(r Rule, gen int) int {
	bg := r.Background()
	return bg[core.FloorMod(gen, len(bg))]
}

// ConvertState maps between stored and actual states for generation gen.
func ConvertState(r Rule, state, gen int) int {
	return core.ConvertState(state, BackgroundAt(r, gen))
}
