// Package app runs a simulator in an ebiten window.
package app

import (
	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

// Soup returns a size*size random soup for r, centred on the origin or,
// on a bounded grid, on the middle of the grid.
func Soup(r rules.Rule, size int, density float64, seed int64) *core.Grid {
	g := core.NewGrid()
	at := core.C(-size/2, -size/2)
	if b := r.Bounded(); b != nil {
		at = core.C((b.Width-size)/2, (b.Height-size)/2)
	}
	pcore.NewRNG(seed).FillSoup(size, size, r.NumStates(), density, func(x, y, state int) {
		c, ok := r.Bounded().Map(at.Add(core.C(x, y)))
		if ok {
			g.Set(c, state)
		}
	})
	return g
}
