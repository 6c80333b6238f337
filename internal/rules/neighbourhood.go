package rules

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"casearch/internal/core"
)

// NeighbourhoodSymbols are the single-character neighbourhood names
// accepted after N in higher-range rulestrings.
const NeighbourhoodSymbols = "ABbCGHLMNX23*+#"

// square enumerates the (2r+1)^2 box with x outer, skipping the centre
// unless keepCentre, and keeps the offsets accepted by f.
func square(r int, keepCentre bool, f func(x, y int) bool) []core.Coordinate {
	var out []core.Coordinate
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			if x == 0 && y == 0 && !keepCentre {
				continue
			}
			if f(x, y) {
				out = append(out, core.Coordinate{X: x, Y: y})
			}
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Moore returns the square neighbourhood of range r.
func Moore(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return true })
}

// VonNeumann returns the diamond |x|+|y| <= r.
func VonNeumann(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return abs(x)+abs(y) <= r })
}

// HexagonalNeighbourhood returns the hexagon of range r on a sheared square lattice.
func HexagonalNeighbourhood(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool {
		return x >= 0 && y >= 0 || x <= 0 && y <= 0 || x <= r+y && y < 0 || x >= -(r-y) && y > 0
	})
}

// Euclidean returns the disc x^2+y^2 <= r^2.
func Euclidean(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return x*x+y*y <= r*r })
}

// Circular returns the disc x^2+y^2 <= r^2+r.
func Circular(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return x*x+y*y <= r*r+r })
}

// Cross returns the two axes.
func Cross(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return x == 0 || y == 0 })
}

// Saltire returns the two diagonals.
func Saltire(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return abs(x) == abs(y) })
}

// Star returns the axes and diagonals.
func Star(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return abs(x) == abs(y) || x == 0 || y == 0 })
}

// Hash returns the rows and columns at distance one from the centre.
func Hash(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return abs(x) == 1 || abs(y) == 1 })
}

// Checkerboard returns the cells of opposite colour to the centre.
func Checkerboard(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return abs(x)%2 != abs(y)%2 })
}

// AlignedCheckerboard returns the cells of the same colour as the centre.
func AlignedCheckerboard(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return abs(x)%2 == abs(y)%2 })
}

// Tripod returns three hexagonal arms.
func Tripod(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool {
		return y <= 0 && x <= 0 && (x == 0 || y == 0) || y > 0 && x == y
	})
}

// Asterisk returns the three hexagonal axes.
func Asterisk(r int) []core.Coordinate {
	return square(r, false, func(x, y int) bool { return x == y || x == 0 || y == 0 })
}

// Gaussian returns the full box including the centre together with
// weights (r+1-|x|)(r+1-|y|).
func Gaussian(r int) ([]core.Coordinate, []int) {
	nbhd := square(r, true, func(x, y int) bool { return true })
	weights := make([]int, len(nbhd))
	for i, c := range nbhd {
		weights[i] = (r + 1 - abs(c.X)) * (r + 1 - abs(c.Y))
	}
	return nbhd, weights
}

// TriangularNeighbourhood returns the triangular neighbourhood of range r for an
// upward triangle.
func TriangularNeighbourhood(r int) []core.Coordinate {
	var out []core.Coordinate
	for x := -2 * r; x <= 2*r; x++ {
		for y := -r; y <= r; y++ {
			if x == 0 && y == 0 {
				continue
			}
			ax := abs(x)
			if y == 0 || y == -1 || ax <= r ||
				y < 0 && ax > r && ax-r < r+y+2 ||
				y > 0 && ax > r && ax-r < r-y+1 {
				out = append(out, core.Coordinate{X: x, Y: y})
			}
		}
	}
	return out
}

// FromSymbol builds the neighbourhood named by symbol. Weights are nil
// unless the neighbourhood is weighted.
func FromSymbol(symbol byte, r int) ([]core.Coordinate, []int, Tiling) {
	switch symbol {
	case 'A':
		return Asterisk(r), nil, Hexagonal
	case 'B':
		return Checkerboard(r), nil, Square
	case 'b':
		return AlignedCheckerboard(r), nil, Square
	case 'C':
		return Circular(r), nil, Square
	case 'G':
		nbhd, w := Gaussian(r)
		return nbhd, w, Square
	case 'H':
		return HexagonalNeighbourhood(r), nil, Hexagonal
	case 'L':
		return TriangularNeighbourhood(r), nil, Triangular
	case 'N':
		return VonNeumann(r), nil, Square
	case 'X':
		return Saltire(r), nil, Square
	case '2':
		return Euclidean(r), nil, Square
	case '3':
		return Tripod(r), nil, Hexagonal
	case '*':
		return Star(r), nil, Square
	case '+':
		return Cross(r), nil, Square
	case '#':
		return Hash(r), nil, Square
	default:
		return Moore(r), nil, Square
	}
}

// SymbolTiling returns the lattice of a symbol-named neighbourhood.
func SymbolTiling(symbol byte) Tiling {
	_, _, t := FromSymbol(symbol, 1)
	return t
}

// FromCoordCA decodes a CoordCA hexadecimal bitmask over the (2r+1)^2-1
// off-centre cells, most significant bit first, reading from (r, r)
// backwards through rows.
func FromCoordCA(hex string, r int) ([]core.Coordinate, error) {
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return nil, fmt.Errorf("invalid CoordCA neighbourhood %q", hex)
	}
	side := 2*r + 1
	bits := n.Text(2)
	width := side*side - 1
	if len(bits) > width {
		return nil, fmt.Errorf("CoordCA neighbourhood %q too long for range %d", hex, r)
	}
	bits = strings.Repeat("0", width-len(bits)) + bits

	var out []core.Coordinate
	k := 0
	for i := -r; i <= r; i++ {
		for j := -r; j <= r; j++ {
			if i == 0 && j == 0 {
				continue
			}
			if bits[k] == '1' {
				out = append(out, core.Coordinate{X: -j, Y: -i})
			}
			k++
		}
	}
	return out, nil
}

// FromWeights decodes LifeViewer weights over the (2r+1)^2 box in row
// order. One hex digit per cell treats 8 and above as negative (w-8); two
// digits per cell treat 128 and above as negative (w-128). Zero-weight
// cells are left out.
func FromWeights(hex string, r int) ([]core.Coordinate, []int, error) {
	side := 2*r + 1
	cells := side * side
	var digits, negAt int
	switch len(hex) {
	case cells:
		digits, negAt = 1, 8
	case 2 * cells:
		digits, negAt = 2, 128
	default:
		return nil, nil, fmt.Errorf("weights %q: need %d or %d hex digits for range %d", hex, cells, 2*cells, r)
	}

	var nbhd []core.Coordinate
	var weights []int
	for i := 0; i < cells; i++ {
		v, err := strconv.ParseUint(hex[i*digits:(i+1)*digits], 16, 8)
		if err != nil {
			return nil, nil, fmt.Errorf("weights %q: %w", hex, err)
		}
		w := int(v)
		if w >= negAt {
			w = -(w - negAt)
		}
		if w == 0 {
			continue
		}
		nbhd = append(nbhd, core.Coordinate{X: i%side - r, Y: i/side - r})
		weights = append(weights, w)
	}
	return nbhd, weights, nil
}
