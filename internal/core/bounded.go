package core

import (
	"fmt"
	"regexp"
	"strconv"
)

// BoundKind selects how a bounded grid treats coordinates past its edges.
type BoundKind int

const (
	// Torus wraps coordinates around each bounded axis.
	Torus BoundKind = iota
	// Plane discards coordinates outside the bounded axes.
	Plane
)

// BoundedGrid describes a finite grid anchored at (0, 0). A zero width or
// height leaves that axis unbounded.
type BoundedGrid struct {
	Kind          BoundKind
	Width, Height int
}

var boundedRe = regexp.MustCompile(`^([TP])(\d+)(?:,(\d+))?$`)

// ParseBounded parses a specifier such as T20,30 or P16.
func ParseBounded(spec string) (*BoundedGrid, error) {
	m := boundedRe.FindStringSubmatch(spec)
	if m == nil {
		return nil, fmt.Errorf("bounded grid %q: unrecognised specifier", spec)
	}
	w, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("bounded grid %q: %w", spec, err)
	}
	h := w
	if m[3] != "" {
		if h, err = strconv.Atoi(m[3]); err != nil {
			return nil, fmt.Errorf("bounded grid %q: %w", spec, err)
		}
	}
	kind := Torus
	if m[1] == "P" {
		kind = Plane
	}
	return &BoundedGrid{Kind: kind, Width: w, Height: h}, nil
}

// Map returns where c lands on the grid. ok is false when c falls off a
// plane.
func (b *BoundedGrid) Map(c Coordinate) (Coordinate, bool) {
	if b == nil {
		return c, true
	}
	switch b.Kind {
	case Torus:
		if b.Width > 0 {
			c.X = FloorMod(c.X, b.Width)
		}
		if b.Height > 0 {
			c.Y = FloorMod(c.Y, b.Height)
		}
		return c, true
	default:
		if b.Width > 0 && (c.X < 0 || c.X >= b.Width) {
			return c, false
		}
		if b.Height > 0 && (c.Y < 0 || c.Y >= b.Height) {
			return c, false
		}
		return c, true
	}
}

// Contains reports whether c lies inside the grid without wrapping.
func (b *BoundedGrid) Contains(c Coordinate) bool {
	if b == nil {
		return true
	}
	if b.Width > 0 && (c.X < 0 || c.X >= b.Width) {
		return false
	}
	return b.Height <= 0 || (c.Y >= 0 && c.Y < b.Height)
}

// Specifier returns the canonical form, without the leading colon.
func (b *BoundedGrid) Specifier() string {
	kind := "T"
	if b.Kind == Plane {
		kind = "P"
	}
	if b.Height == b.Width {
		return fmt.Sprintf("%s%d", kind, b.Width)
	}
	return fmt.Sprintf("%s%d,%d", kind, b.Width, b.Height)
}
