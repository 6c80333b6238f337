package oned

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/rules"
)

func unroll(r rules.Rule, g *core.Grid, gens int) {
	h := rules.NewHistory(r.AlternatingPeriod())
	g.Each(func(c core.Coordinate, _ int) { h.Touch(c) })
	for gen := 0; gen < gens; gen++ {
		rules.Step(r, g, h, gen, nil)
		g.SetBackground(rules.BackgroundAt(r, gen+1))
	}
}

func row(g *core.Grid, y, from, to int) []int {
	var out []int
	for x := from; x <= to; x++ {
		if g.Get(core.C(x, y)) != 0 {
			out = append(out, x)
		}
	}
	return out
}

func TestRule110(t *testing.T) {
	g := core.NewGrid()
	g.Set(core.C(0, 0), 1)
	unroll(MustParse("W110"), g, 3)

	assert.Equal(t, []int{0}, row(g, 0, -5, 5))
	assert.Equal(t, []int{-1, 0}, row(g, 1, -5, 5))
	assert.Equal(t, []int{-2, -1, 0}, row(g, 2, -5, 5))
	assert.Equal(t, []int{-3, -2, 0}, row(g, 3, -5, 5))
}

func TestRule90MatchesPascalParity(t *testing.T) {
	g := core.NewGrid()
	g.Set(core.C(0, 0), 1)
	const gens = 16
	unroll(MustParse("W90"), g, gens)

	for y := 0; y <= gens; y++ {
		for x := -gens; x <= gens; x++ {
			want := 0
			if (x+y)%2 == 0 && abs(x) <= y {
				k := (x + y) / 2
				if k&y == k {
					want = 1
				}
			}
			require.Equal(t, want, g.Get(core.C(x, y)), "cell (%d, %d)", x, y)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestParse(t *testing.T) {
	cases := map[string]string{
		"W110":         "W110",
		"W0110":        "W110",
		"R1,C2,W110":   "R1,C2,W110",
		"R1,C3,W14584": "R1,C3,W14584",
	}
	for in, want := range cases {
		got, err := rules.Canonise(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, s := range []string{"W256", "R1,C1,W3", "R9,C9,W1"} {
		_, err := rules.Parse(s)
		assert.ErrorIs(t, err, rules.ErrInvalidRule, s)
	}
}

func TestBackgroundCycle(t *testing.T) {
	assert.Equal(t, []int{0}, MustParse("W110").Background())
	assert.Equal(t, []int{0, 1}, MustParse("R1,C3,W14584").Background())
	// 000 -> 1 and 111 -> 1 settles on an all-on background.
	assert.Equal(t, []int{1}, MustParse("W129").Background())
}
