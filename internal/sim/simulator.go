// Package sim runs a rule over a grid and classifies what it does.
package sim

import (
	"casearch/internal/core"
	"casearch/internal/rules"
)

// Simulator owns a grid, the rule that evolves it, the generation counter
// and the ring of recently changed cells. A Simulator is not safe for
// concurrent use; search workers each clone their own.
type Simulator struct {
	rule rules.Rule
	grid *core.Grid
	hist *rules.History
	gen  int
}

// New returns an empty simulator at generation 0.
func New(rule rules.Rule) *Simulator {
	return &Simulator{
		rule: rule,
		grid: core.NewGrid(),
		hist: rules.NewHistory(rule.AlternatingPeriod()),
	}
}

// Rule returns the current rule.
func (s *Simulator) Rule() rules.Rule { return s.rule }

// SetRule swaps the rule. Every cell is re-evaluated on the next step and
// states the new rule does not have are cleared.
func (s *Simulator) SetRule(r rules.Rule) {
	s.rule = r
	s.hist.Reset(r.AlternatingPeriod())
	for _, c := range s.grid.Coordinates() {
		if s.grid.Get(c) >= r.NumStates() {
			s.grid.Set(c, 0)
		}
		s.hist.Touch(c)
	}
	s.grid.SetBackground(rules.BackgroundAt(r, s.gen))
}

// Generation returns the number of steps taken.
func (s *Simulator) Generation() int { return s.gen }

// SetGeneration moves the generation counter without stepping.
func (s *Simulator) SetGeneration(gen int) {
	s.gen = gen
	s.grid.SetBackground(rules.BackgroundAt(s.rule, gen))
}

// Grid returns the live grid. Writes should go through Set or Insert so
// the changed cells are re-evaluated.
func (s *Simulator) Grid() *core.Grid { return s.grid }

// Get returns the stored state at c.
func (s *Simulator) Get(c core.Coordinate) int { return s.grid.Get(c) }

// Set writes a cell and marks it changed.
func (s *Simulator) Set(c core.Coordinate, state int) {
	s.grid.Set(c, state)
	s.hist.Touch(c)
}

// Insert copies g into the simulator translated by at.
func (s *Simulator) Insert(g *core.Grid, at core.Coordinate) {
	g.Each(func(c core.Coordinate, state int) {
		s.Set(c.Add(at), state)
	})
}

// ClearRect clears the inclusive box lo..hi.
func (s *Simulator) ClearRect(lo, hi core.Coordinate) {
	for _, c := range s.grid.SubGrid(lo, hi).Coordinates() {
		s.Set(c, 0)
	}
}

// Population is the number of stored cells.
func (s *Simulator) Population() int { return s.grid.Population() }

// Step advances one generation.
func (s *Simulator) Step() { s.StepWithin(nil) }

// StepWithin advances one generation, only evaluating changed cells
// accepted by include.
func (s *Simulator) StepWithin(include func(core.Coordinate) bool) {
	rules.Step(s.rule, s.grid, s.hist, s.gen, include)
	s.gen++
	s.grid.SetBackground(rules.BackgroundAt(s.rule, s.gen))
}

// Frontier returns the cells that changed recently enough to be evaluated
// in the next step.
func (s *Simulator) Frontier() map[core.Coordinate]struct{} { return s.hist.Frontier(nil) }

// Clone returns an independent copy sharing nothing with s.
func (s *Simulator) Clone() *Simulator {
	return &Simulator{
		rule: s.rule.Clone(),
		grid: s.grid.Clone(),
		hist: s.hist.Clone(),
		gen:  s.gen,
	}
}

// Snapshot returns a copy of the grid carrying its background.
func (s *Simulator) Snapshot() *core.Grid {
	g := s.grid.Clone()
	g.SetBackground(rules.BackgroundAt(s.rule, s.gen))
	return g
}

// RLE encodes the grid.
func (s *Simulator) RLE() string { return s.grid.ToRLE(s.rule.NumStates()) }
