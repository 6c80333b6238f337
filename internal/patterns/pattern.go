// Package patterns holds the classified results of running a pattern:
// oscillators, spaceships, catalysts and the growth kinds.
package patterns

import (
	"fmt"
	"strconv"

	"casearch/internal/core"
	"casearch/internal/rules"
)

// Kind enumerates pattern classifications.
type Kind int

const (
	Oscillator Kind = iota
	Spaceship
	Catalyst
	LinearGrowth
	PowerLaw
)

func (k Kind) String() string {
	switch k {
	case Oscillator:
		return "oscillator"
	case Spaceship:
		return "spaceship"
	case Catalyst:
		return "catalyst"
	case LinearGrowth:
		return "linear growth"
	case PowerLaw:
		return "power law"
	default:
		return "unknown"
	}
}

// Pattern is a classified snapshot. Fields that do not apply to the kind
// are zero.
type Pattern struct {
	Kind Kind
	Rule rules.Rule
	// Grid is the representative phase.
	Grid *core.Grid

	Period       int
	Displacement core.Coordinate

	// Oscillator and spaceship metrics.
	Heat          float64
	Rotor, Stator int
	// Populations[i][s] counts cells in state s during phase i.
	Populations [][]int

	RepeatTime int
	Partial    bool

	PopulationPeriod int
	Power            float64

	// MinRule and MaxRule bound the rules the evolution is valid under.
	// Both are nil when the family has no solver.
	MinRule, MaxRule rules.Rule
}

func newPattern(kind Kind, rule rules.Rule, grid *core.Grid) *Pattern {
	return &Pattern{Kind: kind, Rule: rule.Clone(), Grid: grid.Clone()}
}

// NewOscillator returns an oscillator, or a still life when period is 1.
func NewOscillator(rule rules.Rule, grid *core.Grid, period int) *Pattern {
	p := newPattern(Oscillator, rule, grid)
	p.Period = period
	return p
}

// NewSpaceship returns a spaceship moving by displacement every period
// generations.
func NewSpaceship(rule rules.Rule, grid *core.Grid, period int, displacement core.Coordinate) *Pattern {
	p := newPattern(Spaceship, rule, grid)
	p.Period = period
	p.Displacement = displacement
	return p
}

// NewCatalyst returns a catalyst arrangement that restores itself after
// repeatTime generations.
func NewCatalyst(rule rules.Rule, grid *core.Grid, repeatTime int, partial bool) *Pattern {
	p := newPattern(Catalyst, rule, grid)
	p.RepeatTime = repeatTime
	p.Partial = partial
	return p
}

// NewLinearGrowth returns a pattern whose population grows linearly with
// the given population period.
func NewLinearGrowth(rule rules.Rule, grid *core.Grid, popPeriod int) *Pattern {
	p := newPattern(LinearGrowth, rule, grid)
	p.PopulationPeriod = popPeriod
	return p
}

// NewPowerLaw returns a pattern whose cumulative population grows as a
// power of time.
func NewPowerLaw(rule rules.Rule, grid *core.Grid, power float64) *Pattern {
	p := newPattern(PowerLaw, rule, grid)
	p.Power = power
	return p
}

// String is the short description shown in search results.
func (p *Pattern) String() string {
	switch p.Kind {
	case Oscillator:
		if p.Period == 1 {
			return "Still Life"
		}
		return fmt.Sprintf("P%d Oscillator", p.Period)
	case Spaceship:
		return fmt.Sprintf("(%d,%d)c/%d", p.Displacement.X, p.Displacement.Y, p.Period)
	case Catalyst:
		if p.Partial {
			return fmt.Sprintf("Partial catalyst of repeat time %d", p.RepeatTime)
		}
		return fmt.Sprintf("Catalyst of repeat time %d", p.RepeatTime)
	case LinearGrowth:
		return "Linear Growth"
	case PowerLaw:
		return PowerLabel(p.Power)
	default:
		return p.Kind.String()
	}
}

// StillLife reports whether p is a period-1 oscillator.
func (p *Pattern) StillLife() bool { return p.Kind == Oscillator && p.Period == 1 }

// Oblique reports whether a spaceship moves neither orthogonally nor
// diagonally.
func (p *Pattern) Oblique() bool {
	if p.Kind != Spaceship {
		return false
	}
	dx, dy := abs(p.Displacement.X), abs(p.Displacement.Y)
	return dx != 0 && dy != 0 && dx != dy
}

// Key identifies p for duplicate suppression.
func (p *Pattern) Key() string {
	lo, hi := "", ""
	if p.MinRule != nil && p.MaxRule != nil {
		lo, hi = p.MinRule.Rulestring(), p.MaxRule.Rulestring()
	}
	if p.Kind == Catalyst {
		lo = strconv.Itoa(p.Grid.Hash())
	}
	return fmt.Sprintf("%s|%d|%d,%d|%d|%s|%s", p.Kind, p.Period, p.Displacement.X, p.Displacement.Y, p.RepeatTime, lo, hi)
}

// Field is one line of additional information.
type Field struct {
	Name  string
	Value string
}

// Info lists the kind-specific measurements in display order.
func (p *Pattern) Info() []Field {
	var out []Field
	add := func(name, value string) { out = append(out, Field{name, value}) }
	switch p.Kind {
	case Oscillator, Spaceship:
		add("Period", strconv.Itoa(p.Period))
		if p.Populations != nil {
			active := p.Rotor + p.Stator
			add("Heat", fmt.Sprintf("%.2f", p.Heat))
			if active > 0 {
				add("Volatility", fmt.Sprintf("%.2f", float64(p.Rotor)/float64(active)))
			}
			add("Active Cells", fmt.Sprintf("%d | %d | %d", p.Rotor, p.Stator, active))
		}
	case Catalyst:
		add("Repeat Time", strconv.Itoa(p.RepeatTime))
	case LinearGrowth:
		add("Population Period", strconv.Itoa(p.PopulationPeriod))
	case PowerLaw:
		add("Power", strconv.FormatFloat(p.Power, 'f', 4, 64))
	}
	if p.MinRule != nil && p.MaxRule != nil {
		add("Minimum Rule", p.MinRule.Rulestring())
		add("Maximum Rule", p.MaxRule.Rulestring())
	}
	return out
}

// RLE encodes the representative phase.
func (p *Pattern) RLE() string { return p.Grid.ToRLE(p.Rule.NumStates()) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
