package rules

import (
	"casearch/internal/core"
)

// observeMargin is how far past the bounding box transitions are sampled.
const observeMargin = 5

// Observation is one cell's transition between consecutive grids of an
// evolution, in actual (background-resolved) states.
type Observation struct {
	Cell       core.Coordinate
	Gen        int
	State      int
	Next       int
	Neighbours []int
}

// Observe calls fn for every cell near the pattern in each consecutive pair
// of grids. Each grid must carry its background. Cells whose next state
// the rule decides without neighbours are skipped. Neighbours is reused
// between calls.
func Observe(r Rule, grids []*core.Grid, fn func(Observation)) {
	ind, _ := r.(Independent)
	bound := r.Bounded()
	for i := 0; i+1 < len(grids); i++ {
		cur, next := grids[i], grids[i+1]
		lo, hi, ok := cur.Bounds()
		if !ok {
			lo, hi = core.Coordinate{}, core.Coordinate{}
		}
		nbhd := r.Neighbourhood(i)
		var inverted []core.Coordinate
		if r.Tiling() == Triangular {
			inverted = Invert(nbhd)
		}
		buf := make([]int, len(nbhd))
		for x := lo.X - observeMargin; x < hi.X+observeMargin; x++ {
			for y := lo.Y - observeMargin; y < hi.Y+observeMargin; y++ {
				c := core.Coordinate{X: x, Y: y}
				if !bound.Contains(c) {
					continue
				}
				state := cur.Actual(c)
				if ind != nil {
					if _, ok := ind.Independent(state, i, c); ok {
						continue
					}
				}
				offsets := nbhd
				if inverted != nil && core.FloorMod(x, 2) != core.FloorMod(y, 2) {
					offsets = inverted
				}
				for k, o := range offsets {
					m, ok := bound.Map(c.Add(o))
					if ok {
						buf[k] = cur.Actual(m)
					} else {
						buf[k] = cur.Background()
					}
				}
				fn(Observation{Cell: c, Gen: i, State: state, Next: next.Actual(c), Neighbours: buf})
			}
		}
	}
}
