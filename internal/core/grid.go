package core

import (
	"slices"
)

const (
	hashSeed = 31415962
	hashMul  = 1000003
)

// Grid is a sparse mapping from coordinates to cell states. State 0 is never
// stored.
type Grid struct {
	cells      map[Coordinate]int
	background int

	lo, hi      Coordinate
	boundsDirty bool
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[Coordinate]int)}
}

// Get returns the stored state at c, 0 when absent.
func (g *Grid) Get(c Coordinate) int { return g.cells[c] }

// Set stores state at c. Setting 0 removes the cell.
func (g *Grid) Set(c Coordinate, state int) {
	if state == 0 {
		if _, ok := g.cells[c]; ok {
			delete(g.cells, c)
			g.boundsDirty = true
		}
		return
	}
	if _, ok := g.cells[c]; !ok && !g.boundsDirty {
		if len(g.cells) == 0 {
			g.lo, g.hi = c, c
		} else {
			g.lo = Coordinate{min(g.lo.X, c.X), min(g.lo.Y, c.Y)}
			g.hi = Coordinate{max(g.hi.X, c.X), max(g.hi.Y, c.Y)}
		}
	}
	g.cells[c] = state
}

// Population is the number of stored cells.
func (g *Grid) Population() int { return len(g.cells) }

// Each calls fn for every stored cell in unspecified order.
func (g *Grid) Each(fn func(c Coordinate, state int)) {
	for c, s := range g.cells {
		fn(c, s)
	}
}

// Coordinates returns the stored cells sorted by (x, y).
func (g *Grid) Coordinates() []Coordinate {
	out := make([]Coordinate, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, Coordinate.Compare)
	return out
}

// rowMajor returns the stored cells sorted by (y, x).
func (g *Grid) rowMajor() []Coordinate {
	out := make([]Coordinate, 0, len(g.cells))
	for c := range g.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Coordinate) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}

// Clear removes every cell.
func (g *Grid) Clear() {
	clear(g.cells)
	g.boundsDirty = false
}

// ClearRect removes every cell inside the inclusive box lo..hi.
func (g *Grid) ClearRect(lo, hi Coordinate) {
	for c := range g.cells {
		if inBox(c, lo, hi) {
			delete(g.cells, c)
			g.boundsDirty = true
		}
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	cp := &Grid{
		cells:       make(map[Coordinate]int, len(g.cells)),
		background:  g.background,
		lo:          g.lo,
		hi:          g.hi,
		boundsDirty: g.boundsDirty,
	}
	for c, s := range g.cells {
		cp.cells[c] = s
	}
	return cp
}

// Insert copies every cell of other into g, translated by at.
func (g *Grid) Insert(other *Grid, at Coordinate) {
	for c, s := range other.cells {
		g.Set(c.Add(at), s)
	}
}

// SubGrid returns the cells inside the inclusive box lo..hi, keeping their
// coordinates.
func (g *Grid) SubGrid(lo, hi Coordinate) *Grid {
	out := NewGrid()
	out.background = g.background
	for c, s := range g.cells {
		if inBox(c, lo, hi) {
			out.Set(c, s)
		}
	}
	return out
}

// Bounds returns the inclusive bounding box of the stored cells. ok is false
// for an empty grid.
func (g *Grid) Bounds() (lo, hi Coordinate, ok bool) {
	if len(g.cells) == 0 {
		return Coordinate{}, Coordinate{}, false
	}
	if g.boundsDirty {
		first := true
		for c := range g.cells {
			if first {
				g.lo, g.hi = c, c
				first = false
				continue
			}
			g.lo = Coordinate{min(g.lo.X, c.X), min(g.lo.Y, c.Y)}
			g.hi = Coordinate{max(g.hi.X, c.X), max(g.hi.Y, c.Y)}
		}
		g.boundsDirty = false
	}
	return g.lo, g.hi, true
}

// Background is the background state the stored cells are relative to.
func (g *Grid) Background() int { return g.background }

// SetBackground records the background state of the grid.
func (g *Grid) SetBackground(b int) { g.background = b }

// Actual resolves the stored state at c through the background: stored 0
// reads as the background and the background reads as 0.
func (g *Grid) Actual(c Coordinate) int {
	return ConvertState(g.cells[c], g.background)
}

// ConvertState swaps 0 and background, leaving other states unchanged.
func ConvertState(state, background int) int {
	switch state {
	case background:
		return 0
	case 0:
		return background
	default:
		return state
	}
}

// Hash returns a translation-invariant hash of the grid.
func (g *Grid) Hash() int {
	lo, _, ok := g.Bounds()
	if !ok {
		return hashSeed
	}
	return g.hashCells(g.rowMajor(), lo)
}

// HashOf hashes the listed cells relative to origin.
func (g *Grid) HashOf(coords []Coordinate, origin Coordinate) int {
	sorted := slices.Clone(coords)
	slices.SortFunc(sorted, func(a, b Coordinate) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return g.hashCells(sorted, origin)
}

func (g *Grid) hashCells(coords []Coordinate, origin Coordinate) int {
	h := int32(hashSeed)
	for _, c := range coords {
		s := g.cells[c]
		if s == 0 {
			continue
		}
		h = h*hashMul ^ int32(c.Y-origin.Y)
		h = h*hashMul ^ int32(c.X-origin.X)
		h = h*hashMul ^ int32(s)
	}
	return int(h)
}

// SlowEquals reports whether other translated by (dx, dy) equals g.
func (g *Grid) SlowEquals(other *Grid, dx, dy int) bool {
	if len(g.cells) != len(other.cells) {
		return false
	}
	d := Coordinate{dx, dy}
	for c, s := range other.cells {
		if g.cells[c.Add(d)] != s {
			return false
		}
	}
	return true
}

// BFS returns every cell within distance hops of a stored cell, where one
// hop follows an offset of nbhd. Stored cells are included.
func (g *Grid) BFS(distance int, nbhd []Coordinate) map[Coordinate]struct{} {
	seen := make(map[Coordinate]struct{}, len(g.cells))
	frontier := make([]Coordinate, 0, len(g.cells))
	for c := range g.cells {
		seen[c] = struct{}{}
		frontier = append(frontier, c)
	}
	for i := 0; i < distance; i++ {
		var next []Coordinate
		for _, c := range frontier {
			for _, o := range nbhd {
				n := c.Add(o)
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return seen
}

func inBox(c, lo, hi Coordinate) bool {
	return c.X >= lo.X && c.X <= hi.X && c.Y >= lo.Y && c.Y <= hi.Y
}
