package core

import "fmt"

// Coordinate is a cell position on an unbounded integer plane.
type Coordinate struct {
	X, Y int
}

// C is shorthand for Coordinate{x, y}.
func C(x, y int) Coordinate { return Coordinate{X: x, Y: y} }

// Add translates c by o.
func (c Coordinate) Add(o Coordinate) Coordinate { return Coordinate{c.X + o.X, c.Y + o.Y} }

// Sub returns c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate { return Coordinate{c.X - o.X, c.Y - o.Y} }

// Less orders coordinates by x, then y.
func (c Coordinate) Less(o Coordinate) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Compare returns -1, 0 or 1 following Less.
func (c Coordinate) Compare(o Coordinate) int {
	switch {
	case c == o:
		return 0
	case c.Less(o):
		return -1
	default:
		return 1
	}
}

func (c Coordinate) String() string { return fmt.Sprintf("(%d, %d)", c.X, c.Y) }

// FloorMod is the non-negative remainder of a / m for m > 0.
func FloorMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
