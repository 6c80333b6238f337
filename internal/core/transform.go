package core

// ReflectX mirrors the box lo..hi horizontally in place.
func (g *Grid) ReflectX(lo, hi Coordinate) {
	g.remap(lo, hi, func(c Coordinate) Coordinate {
		return Coordinate{hi.X - c.X + lo.X, c.Y}
	})
}

// ReflectY mirrors the box lo..hi vertically in place.
func (g *Grid) ReflectY(lo, hi Coordinate) {
	g.remap(lo, hi, func(c Coordinate) Coordinate {
		return Coordinate{c.X, hi.Y - c.Y + lo.Y}
	})
}

// RotateCW rotates the box lo..hi clockwise about its centre.
func (g *Grid) RotateCW(lo, hi Coordinate) {
	cx, cy := (hi.X-lo.X)/2+lo.X, (hi.Y-lo.Y)/2+lo.Y
	g.remap(lo, hi, func(c Coordinate) Coordinate {
		dx, dy := c.X-cx, c.Y-cy
		return Coordinate{cx - dy, cy + dx}
	})
}

// RotateCCW rotates the box lo..hi counter-clockwise about its centre.
func (g *Grid) RotateCCW(lo, hi Coordinate) {
	cx, cy := (hi.X-lo.X)/2+lo.X, (hi.Y-lo.Y)/2+lo.Y
	g.remap(lo, hi, func(c Coordinate) Coordinate {
		dx, dy := c.X-cx, c.Y-cy
		return Coordinate{cx + dy, cy - dx}
	})
}

func (g *Grid) remap(lo, hi Coordinate, f func(Coordinate) Coordinate) {
	moved := make(map[Coordinate]int)
	for c, s := range g.cells {
		if inBox(c, lo, hi) {
			moved[f(c)] = s
		}
	}
	g.ClearRect(lo, hi)
	for c, s := range moved {
		g.Set(c, s)
	}
}
