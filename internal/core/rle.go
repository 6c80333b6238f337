package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ToRLE encodes the grid body (no header) in run-length form. Two-state
// grids use b/o, multi-state grids use . and A-X with p-y prefixes past 24.
func (g *Grid) ToRLE(numStates int) string {
	lo, hi, ok := g.Bounds()
	if !ok {
		return "!"
	}
	var b strings.Builder
	var last string
	run := 0
	flush := func() {
		if run == 0 {
			return
		}
		if run > 1 {
			b.WriteString(strconv.Itoa(run))
		}
		b.WriteString(last)
		run = 0
	}
	emit := func(tok string, n int) {
		if tok != last {
			flush()
			last = tok
		}
		run += n
	}
	dead := "."
	if numStates <= 2 {
		dead = "b"
	}
	pendingRows := 0
	for y := lo.Y; y <= hi.Y; y++ {
		end := hi.X
		for end >= lo.X && g.cells[Coordinate{end, y}] == 0 {
			end--
		}
		if end < lo.X {
			pendingRows++
			continue
		}
		if y != lo.Y {
			emit("$", pendingRows+1)
		}
		pendingRows = 0
		for x := lo.X; x <= end; x++ {
			s := g.cells[Coordinate{x, y}]
			if s == 0 {
				emit(dead, 1)
			} else {
				emit(stateToken(s, numStates), 1)
			}
		}
	}
	flush()
	b.WriteString("!")
	return b.String()
}

func stateToken(s, numStates int) string {
	if numStates <= 2 {
		return "o"
	}
	if s <= 24 {
		return string(rune('A' + s - 1))
	}
	return string(rune('o'+(s-1)/24)) + string(rune('A'+(s-1)%24))
}

// FromRLE decodes a run-length body into a grid anchored at (0, 0).
// Unrecognised characters are dropped and reported through provisional.
func FromRLE(body string) (g *Grid, provisional bool) {
	g = NewGrid()
	x, y := 0, 0
	count := 0
	prefix := 0
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
			count = count*10 + int(r-'0')
			continue
		case r == ' ' || r == '\n' || r == '\r' || r == '\t':
			continue
		}
		n := max(count, 1)
		count = 0
		switch {
		case r == '!':
			return g, provisional
		case r == '$':
			y += n
			x = 0
		case r == 'b' || r == '.':
			x += n
		case r == 'o' && prefix == 0:
			for i := 0; i < n; i++ {
				g.Set(Coordinate{x, y}, 1)
				x++
			}
		case r >= 'p' && r <= 'y':
			prefix = int(r-'p') + 1
			count = n
			if n == 1 {
				count = 0
			}
			continue
		case r >= 'A' && r <= 'X':
			state := prefix*24 + int(r-'A') + 1
			for i := 0; i < n; i++ {
				g.Set(Coordinate{x, y}, state)
				x++
			}
		default:
			provisional = true
		}
		prefix = 0
	}
	return g, provisional
}

var apgcodeRe = regexp.MustCompile(`^x[spq]\d+_([0-9a-z]+)$`)

// ErrBadApgcode reports an apgcode that could not be decoded.
var ErrBadApgcode = errors.New("core: bad apgcode")

// FromApgcode decodes the extended Wechsler body of a two-state apgcode
// such as xs4_33 or xq4_153.
func FromApgcode(code string) (*Grid, error) {
	m := apgcodeRe.FindStringSubmatch(code)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrBadApgcode, code)
	}
	body := m[1]
	g := NewGrid()
	x, strip := 0, 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case 'z':
			x = 0
			strip++
		case 'w':
			x += 2
		case 'x':
			x += 3
		case 'y':
			i++
			if i >= len(body) {
				return nil, fmt.Errorf("%w: %q ends after y", ErrBadApgcode, code)
			}
			n, err := strconv.ParseInt(string(body[i]), 36, 0)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadApgcode, code)
			}
			x += 4 + int(n)
		default:
			v, err := strconv.ParseInt(string(c), 32, 0)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadApgcode, code)
			}
			for bit := 0; bit < 5; bit++ {
				if v&(1<<bit) != 0 {
					g.Set(Coordinate{x, strip*5 + bit}, 1)
				}
			}
			x++
		}
	}
	return g, nil
}
