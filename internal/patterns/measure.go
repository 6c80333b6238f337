package patterns

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"casearch/internal/core"
	"casearch/internal/rules"
)

// Power-law exponents separating the growth labels.
const (
	PowerThreshold  = 1.10
	replicatorBelow = 1.65
	linearBelow     = 2.05
	explosiveBelow  = 2.8
)

// PowerLabel names a power-law growth exponent.
func PowerLabel(power float64) string {
	switch {
	case power < replicatorBelow:
		return "zz_REPLICATOR"
	case power < linearBelow:
		return "zz_LINEAR"
	case power < explosiveBelow:
		return "zz_EXPLOSIVE"
	default:
		return "zz_QUADRATIC"
	}
}

// SetPhases measures an oscillator or spaceship from one full period of
// its evolution: grids[0] through grids[Period], where the last grid is
// the first phase again (translated by the displacement for spaceships).
// The representative grid becomes the smallest phase on a zero background.
func (p *Pattern) SetPhases(grids []*core.Grid) {
	if len(grids) < 2 || p.Period == 0 {
		return
	}
	phases := grids[:len(grids)-1]
	changed := make(map[core.Coordinate]bool)
	heat := 0
	for i := 1; i < len(grids); i++ {
		prev, cur := grids[i-1], grids[i]
		cur.Each(func(c core.Coordinate, s int) {
			diff := s != prev.Get(c)
			if diff {
				heat++
			}
			changed[c] = changed[c] || diff
		})
		prev.Each(func(c core.Coordinate, _ int) {
			if cur.Get(c) == 0 {
				heat++
				changed[c] = true
			}
		})
	}

	p.Rotor, p.Stator = 0, 0
	for _, v := range changed {
		if v {
			p.Rotor++
		} else {
			p.Stator++
		}
	}
	p.Heat = float64(heat) / float64(p.Period)

	states := p.Rule.NumStates()
	p.Populations = make([][]int, len(phases))
	var smallest *core.Grid
	for i, g := range phases {
		counts := make([]int, states)
		g.Each(func(_ core.Coordinate, s int) {
			if s < states {
				counts[s]++
			}
		})
		p.Populations[i] = counts
		if g.Background() == 0 && (smallest == nil || g.Population() < smallest.Population()) {
			smallest = g
		}
	}
	if smallest != nil {
		p.Grid = smallest.Clone()
	}
}

// GenerateMinMax fills MinRule and MaxRule from an evolution. Families
// without a solver leave them nil.
func (p *Pattern) GenerateMinMax(grids []*core.Grid) error {
	mm, ok := p.Rule.(rules.MinMaxRule)
	if !ok {
		return nil
	}
	lo, hi, err := mm.MinMax(grids)
	if errors.Is(err, rules.ErrUnsupported) {
		return nil
	}
	if err != nil {
		return err
	}
	p.MinRule, p.MaxRule = lo, hi
	return nil
}

// DeepPeriod returns the smallest period p < maxPeriod such that every
// subsequence sequence[i], sequence[i+p], ... for i < maxPeriod is a
// polynomial of the given degree, or -1 when there is none.
func DeepPeriod(sequence []int, maxPeriod, degree int) int {
	diff := make([]int, degree+2)
	for p := 1; p < maxPeriod; p++ {
		good := true
		for i := 0; i < maxPeriod && good; i++ {
			if i+(degree+1)*p >= len(sequence) {
				good = false
				break
			}
			for j := range diff {
				diff[j] = sequence[i+j*p]
			}
			for n := len(diff) - 1; n > 0; n-- {
				for k := 0; k < n; k++ {
					diff[k] -= diff[k+1]
				}
			}
			good = diff[0] == 0
		}
		if good {
			return p
		}
	}
	return -1
}

// Regress fits log10 of cumulative population against log10 of the
// generation and returns the slope. cumulative[i] is the total population
// of generations 0..i; only the second half of the run is used.
func Regress(cumulative []int) float64 {
	var xs, ys []float64
	for i := len(cumulative) / 2; i < len(cumulative); i++ {
		if i == 0 {
			continue
		}
		xs = append(xs, math.Log10(float64(i)))
		ys = append(ys, math.Log10(float64(cumulative[i]+1)))
	}
	if len(xs) < 2 {
		return 0
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
