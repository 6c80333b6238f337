package rules

import (
	"casearch/internal/core"
)

// Step advances grid by one generation under r. Only cells in hist (after
// include filtering) and the cells whose neighbourhoods cover them are
// evaluated. grid and hist are updated in place.
func Step(r Rule, grid *core.Grid, hist *History, gen int, include func(core.Coordinate) bool) {
	if s, ok := r.(Stepper); ok {
		s.Step(grid, hist, gen, include)
		return
	}
	if r.ReadingOrder() != nil {
		stepOrdered(r, grid, hist, gen, include)
		return
	}

	nbhd := r.Neighbourhood(gen)
	inverted := invertFor(r, nbhd)

	candidates := make(map[core.Coordinate]struct{})
	for c := range hist.Frontier(include) {
		for _, d := range dependants(r, c, nbhd, inverted) {
			candidates[d] = struct{}{}
		}
	}

	snapshot := grid.Clone()
	buf := make([]int, len(nbhd))
	for c := range candidates {
		prev := snapshot.Get(c)
		next := evaluate(r, snapshot, c, gen, nbhd, inverted, buf)
		if next != prev {
			grid.Set(c, next)
			hist.Touch(c)
		} else {
			hist.Settle(c)
		}
	}
}

// stepOrdered updates cells one at a time in the rule's reading order,
// reading the grid in place.
func stepOrdered(r Rule, grid *core.Grid, hist *History, gen int, include func(core.Coordinate) bool) {
	order := r.ReadingOrder()
	nbhd := r.Neighbourhood(gen)
	inverted := invertFor(r, nbhd)

	q := &cellQueue{order: order}
	queued := make(map[core.Coordinate]struct{})
	enqueue := func(c core.Coordinate) {
		if _, ok := queued[c]; ok {
			return
		}
		queued[c] = struct{}{}
		q.push(c)
	}
	for c := range hist.Frontier(include) {
		for _, d := range dependants(r, c, nbhd, inverted) {
			enqueue(d)
		}
	}

	buf := make([]int, len(nbhd))
	for q.Len() > 0 {
		c := q.pop()
		prev := grid.Get(c)
		next := evaluate(r, grid, c, gen, nbhd, inverted, buf)
		if next == prev {
			hist.Settle(c)
			continue
		}
		grid.Set(c, next)
		hist.Touch(c)
		for _, d := range dependants(r, c, nbhd, inverted) {
			if order.Less(c, d) {
				enqueue(d)
			}
		}
	}
}

// dependants lists c and every cell whose neighbourhood may contain c,
// mapped through the bounded grid.
func dependants(r Rule, c core.Coordinate, nbhd, inverted []core.Coordinate) []core.Coordinate {
	bound := r.Bounded()
	out := make([]core.Coordinate, 0, 1+len(nbhd)+len(inverted))
	add := func(d core.Coordinate) {
		if m, ok := bound.Map(d); ok {
			out = append(out, m)
		}
	}
	add(c)
	for _, o := range nbhd {
		add(c.Sub(o))
	}
	for _, o := range inverted {
		add(c.Sub(o))
	}
	return out
}

func evaluate(r Rule, grid *core.Grid, c core.Coordinate, gen int, nbhd, inverted []core.Coordinate, buf []int) int {
	state := ConvertState(r, grid.Get(c), gen)
	if ind, ok := r.(Independent); ok {
		if next, ok := ind.Independent(state, gen, c); ok {
			return ConvertState(r, next, gen+1)
		}
	}
	neighbours := gather(r, grid, c, gen, nbhd, inverted, buf)
	return ConvertState(r, r.Transition(neighbours, state, gen, c), gen+1)
}

func gather(r Rule, grid *core.Grid, c core.Coordinate, gen int, nbhd, inverted []core.Coordinate, buf []int) []int {
	offsets := nbhd
	if inverted != nil && core.FloorMod(c.X, 2) != core.FloorMod(c.Y, 2) {
		offsets = inverted
	}
	bound := r.Bounded()
	buf = buf[:0]
	for _, o := range offsets {
		stored := 0
		if m, ok := bound.Map(c.Add(o)); ok {
			stored = grid.Get(m)
		}
		buf = append(buf, ConvertState(r, stored, gen))
	}
	return buf
}

func invertFor(r Rule, nbhd []core.Coordinate) []core.Coordinate {
	if r.Tiling() != Triangular {
		return nil
	}
	return Invert(nbhd)
}

// Invert mirrors offsets vertically, giving the neighbourhood of the
// opposite-parity triangles.
func Invert(nbhd []core.Coordinate) []core.Coordinate {
	out := make([]core.Coordinate, len(nbhd))
	for i, o := range nbhd {
		out[i] = core.Coordinate{X: o.X, Y: -o.Y}
	}
	return out
}

// NeighbourStates reads the actual states around cell as the engine would
// in generation gen.
func NeighbourStates(r Rule, grid *core.Grid, cell core.Coordinate, gen int) []int {
	nbhd := r.Neighbourhood(gen)
	return gather(r, grid, cell, gen, nbhd, invertFor(r, nbhd), make([]int, 0, len(nbhd)))
}
