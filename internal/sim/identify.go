package sim

import (
	"fmt"

	"casearch/internal/core"
	"casearch/internal/patterns"
)

// DefaultMaxPeriod is the identification horizon when none is configured.
const DefaultMaxPeriod = 2000

type seen struct {
	gen    int
	pop    int
	lo, hi core.Coordinate
	grid   *core.Grid
}

// phaseHash separates grids that look alike but sit on different
// background phases.
func (s *Simulator) phaseHash() int {
	return s.grid.Hash() + 31*core.FloorMod(s.gen, s.rule.AlternatingPeriod())
}

// Identify runs the simulator for up to maxPeriod generations looking for
// a repeat. A repeat in place is an oscillator and a translated repeat is
// a spaceship. Without a repeat the population history is tested for
// linear and then power-law growth. keepGoing sees every new generation
// and may abort the run, in which case Identify returns nil.
//
// The simulator is left at the generation the classification was made.
func (s *Simulator) Identify(maxPeriod int, keepGoing func(*core.Grid) bool) (*patterns.Pattern, error) {
	if maxPeriod <= 0 {
		maxPeriod = DefaultMaxPeriod
	}
	initial := s.gen
	start := s.Snapshot()
	table := map[int]seen{s.phaseHash(): s.record(start)}
	grids := []*core.Grid{start}

	pops := make([]int, maxPeriod+1)
	cumulative := make([]int, maxPeriod+1)
	cumulative[0] = s.Population()

	var pattern *patterns.Pattern
	first := initial
	for i := 0; i < maxPeriod; i++ {
		s.Step()
		snap := s.Snapshot()
		h := s.phaseHash()

		if prev, ok := table[h]; ok {
			if d, ok := s.repeats(prev, snap); ok {
				period := s.gen - prev.gen
				if d == (core.Coordinate{}) {
					pattern = patterns.NewOscillator(s.rule, snap, period)
				} else {
					pattern = patterns.NewSpaceship(s.rule, snap, period, d)
				}
				first = prev.gen
				grids = append(grids, snap)
				break
			}
		}

		grids = append(grids, snap)
		table[h] = s.record(snap)
		pops[i] = s.Population()
		cumulative[i+1] = cumulative[i] + s.Population()

		if keepGoing != nil && !keepGoing(snap) {
			return nil, nil
		}
		if i < maxPeriod-1 {
			continue
		}
		if p := patterns.DeepPeriod(pops, i/3, 1); p != -1 {
			pattern = patterns.NewLinearGrowth(s.rule, snap, p)
			break
		}
		if power := patterns.Regress(cumulative); power > patterns.PowerThreshold {
			pattern = patterns.NewPowerLaw(s.rule, snap, power)
		}
	}
	if pattern == nil {
		return nil, nil
	}

	phases := grids[first-initial:]
	if pattern.Kind == patterns.Oscillator || pattern.Kind == patterns.Spaceship {
		pattern.SetPhases(phases)
	}
	if err := pattern.GenerateMinMax(phases); err != nil {
		return pattern, fmt.Errorf("sim: identify: %w", err)
	}
	return pattern, nil
}

func (s *Simulator) record(g *core.Grid) seen {
	lo, hi, _ := g.Bounds()
	return seen{gen: s.gen, pop: g.Population(), lo: lo, hi: hi, grid: g}
}

// repeats reports whether snap is prev translated, returning the
// displacement from prev to snap.
func (s *Simulator) repeats(prev seen, snap *core.Grid) (core.Coordinate, bool) {
	if prev.pop != snap.Population() {
		return core.Coordinate{}, false
	}
	lo, hi, _ := snap.Bounds()
	d := lo.Sub(prev.lo)
	if hi.Sub(prev.hi) != d {
		return core.Coordinate{}, false
	}
	return d, snap.SlowEquals(prev.grid, d.X, d.Y)
}
