package hrot

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/rules"
	pcore "casearch/pkg/core"
)

var canonicalInputs = []string{
	"B3/S23",
	"S23/B3",
	"23/3",
	"b36/s23",
	"B2/S34H",
	"B2/S3V",
	"R2,C2,S6-9,B7-8,NM",
	"R2,C0,S,B3,NM",
	"R3,C2,S2,B3-5,N@891891",
	"B3/S23:T20,30",
	"B3/S23:T16,16",
	"B36/S23:P40:NO",
	"B3/S23History",
	"B3/S23Symbiosis",
	"B3/S23DeadlyEnemies",
	"12/34/3",
	"R1,C4,S2-3,B3,NM",
	"R1,B3,S2-3,F0,K,L0-8,NM",
	"B002/M/M/S000011l-0l-0l-0/C4",
	"R2,D1,S6-9,B7-8,NM",
	"R1,I4,S2-3,B3,NM",
}

func TestCanonicalRulestrings(t *testing.T) {
	var b strings.Builder
	for _, in := range canonicalInputs {
		out, err := rules.Canonise(in)
		require.NoError(t, err, in)
		fmt.Fprintf(&b, "%s -> %s\n", in, out)

		again, err := rules.Canonise(out)
		require.NoError(t, err, out)
		assert.Equal(t, out, again, "canonical form of %s is not a fixed point", in)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "canonical", []byte(b.String()))
}

func TestFamilyDispatch(t *testing.T) {
	cases := map[string]string{
		"B3/S23":                  "HROT",
		"R1,C2,S2-3,B3,NM":        "HROT",
		"R1,C4,S2-3,B3,NM":        "Generations",
		"B3/S23History":           "History",
		"B3/S23DeadlyEnemies":     "DeadlyEnemies",
		"R1,B3,S2-3,F0,K,L0-8,NM": "BSFKL",
		"B30/M/S2030ll-0/C3":      "Cyclic",
		"R2,D0,S6-9,B7-8,NM":      "DeficientHROT",
		"R2,I20,S2-3,B3,NM":       "IntegerHROT",
	}
	for in, name := range cases {
		r, err := rules.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, name, r.Name(), in)
	}
}

func TestRejectsInvalid(t *testing.T) {
	for _, in := range []string{
		"B9/S23",
		"B03/S23Symbiosis",
		"R0,C2,S2,B3,NM",
		"R1,C1,S2,B3,NM",
		"R1,C2,S2,B3,NW0110",
		"B2/M/S00/C3",
	} {
		_, err := rules.Parse(in)
		assert.True(t, errors.Is(err, rules.ErrInvalidRule), "%s: %v", in, err)
	}
}

func evolve(t *testing.T, r rules.Rule, rle string, gens int) []*core.Grid {
	t.Helper()
	g, provisional := core.FromRLE(rle)
	require.False(t, provisional)
	h := rules.NewHistory(r.AlternatingPeriod())
	g.Each(func(c core.Coordinate, _ int) { h.Touch(c) })
	grids := []*core.Grid{g.Clone()}
	for gen := 0; gen < gens; gen++ {
		rules.Step(r, g, h, gen, nil)
		g.SetBackground(rules.BackgroundAt(r, gen+1))
		grids = append(grids, g.Clone())
	}
	return grids
}

func TestGliderMoves(t *testing.T) {
	grids := evolve(t, MustParseHROT("B3/S23"), "bo$2bo$3o!", 4)
	assert.True(t, grids[4].SlowEquals(grids[0], 1, 1))
}

func TestRangeFormMatchesShortForm(t *testing.T) {
	short := evolve(t, MustParseHROT("B3/S23"), "b2o$2o$bo!", 30)
	ranged := evolve(t, MustParseHROT("R1,C2,S2-3,B3,NM"), "b2o$2o$bo!", 30)
	for i := range short {
		assert.True(t, short[i].SlowEquals(ranged[i], 0, 0), "generation %d", i)
	}
}

func TestB0Background(t *testing.T) {
	h := MustParseHROT("B03/S23")
	assert.Equal(t, []int{0, 1}, h.Background())
	assert.Equal(t, 2, h.AlternatingPeriod())

	h = MustParseHROT("B0/S012345678")
	assert.Equal(t, []int{1}, h.Background())
	assert.Equal(t, 1, h.AlternatingPeriod())

	g, err := ParseGenerations("012345678/0/4")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, g.Background())

	g, err = ParseGenerations("2/03/4")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, g.Background())
}

func TestMinMaxContainsRule(t *testing.T) {
	life := MustParseHROT("B3/S23")
	grids := evolve(t, life, "bo$2bo$3o!", 8)

	lo, hi, err := life.MinMax(grids)
	require.NoError(t, err)
	minRule, maxRule := lo.(*HROT), hi.(*HROT)

	assert.True(t, minRule.Birth.Equal(NewTransitions(3)))
	assert.True(t, minRule.Survival.SubsetOf(NewTransitions(2, 3)))
	assert.NotEmpty(t, minRule.Survival)
	assert.False(t, maxRule.Birth.Has(0))
	assert.True(t, life.ValidMinMax(lo, hi))
	assert.True(t, life.Between(lo, hi))

	rng := pcore.NewRNG(7)
	for i := 0; i < 20; i++ {
		r, err := life.Randomise(lo, hi, rng)
		require.NoError(t, err)
		got := r.(*HROT)
		assert.True(t, got.Between(lo, hi), got.Rulestring())

		again := evolve(t, got, "bo$2bo$3o!", 4)
		assert.True(t, again[4].SlowEquals(again[0], 1, 1), got.Rulestring())
	}
}

func TestMinMaxWidensWithUniverse(t *testing.T) {
	life := MustParseHROT("B3/S23")
	grids := evolve(t, life, "bo$2bo$3o!", 8)

	loN, hiN, err := life.minMaxWithin(grids, Span(0, 4))
	require.NoError(t, err)
	loW, hiW, err := life.minMaxWithin(grids, Span(0, life.MaxCount))
	require.NoError(t, err)
	minN, maxN, minW, maxW := loN.(*HROT), hiN.(*HROT), loW.(*HROT), hiW.(*HROT)

	assert.True(t, minW.Birth.SubsetOf(minN.Birth))
	assert.True(t, minW.Survival.SubsetOf(minN.Survival))
	assert.True(t, maxN.Birth.SubsetOf(maxW.Birth))
	assert.True(t, maxN.Survival.SubsetOf(maxW.Survival))
	assert.False(t, maxN.Survival.Has(8))
	assert.True(t, life.Between(loN, hiN))
	assert.True(t, life.Between(loW, hiW))
}

func TestRejectsBadTransitions(t *testing.T) {
	cases := map[string]string{
		"R2,C2,S9-6,B7,NM":      "9-6",
		"R2,C2,S6,B8-7,NM":      "8-7",
		"R2,C2,S99,B1,NM":       "99",
		"R1,C4,S2,B9,NM":        "9",
		"R1,B3,S2-3,F0,K,L9,NM": "9",
		"R1,D0,S2,B3-1,NM":      "3-1",
		"R1,I3,S17,B3,NM":       "17",
	}
	for in, token := range cases {
		_, err := rules.Parse(in)
		require.ErrorIs(t, err, rules.ErrInvalidRule, in)
		var perr *rules.ParseError
		require.True(t, errors.As(err, &perr), in)
		assert.Equal(t, token, perr.Token, in)
	}
}

func TestRandomiseRejectsInvertedRange(t *testing.T) {
	life := MustParseHROT("B3/S23")
	_, err := life.Randomise(MustParseHROT("B36/S23"), MustParseHROT("B3/S2"), pcore.NewRNG(1))
	assert.ErrorIs(t, err, rules.ErrInvalidRule)
}

func TestHistoryTransition(t *testing.T) {
	h, err := ParseHistory("B3/S23History")
	require.NoError(t, err)
	assert.Equal(t, 7, h.NumStates())

	n := func(states ...int) []int {
		out := make([]int, 8)
		copy(out, states)
		return out
	}
	assert.Equal(t, 2, h.Transition(n(6, 1, 1), 1, 0, core.Coordinate{}))
	assert.Equal(t, 1, h.Transition(n(1, 3), 1, 0, core.Coordinate{}))
	assert.Equal(t, 2, h.Transition(n(1), 1, 0, core.Coordinate{}))
	assert.Equal(t, 4, h.Transition(n(5), 3, 0, core.Coordinate{}))
	assert.Equal(t, 5, h.Transition(n(1, 1, 1), 5, 0, core.Coordinate{}))
	assert.Equal(t, 3, h.Transition(n(1, 3, 5), 4, 0, core.Coordinate{}))
	assert.Equal(t, 1, h.Transition(n(1, 3, 5), 2, 0, core.Coordinate{}))
	assert.Equal(t, 2, h.Transition(n(2, 4, 6), 2, 0, core.Coordinate{}))

	next, ok := h.Independent(6, 0, core.Coordinate{})
	assert.True(t, ok)
	assert.Equal(t, 6, next)
}

func TestSpeciesTransition(t *testing.T) {
	sym, err := ParseSymbiosis("B3/S23Symbiosis")
	require.NoError(t, err)
	deadly, err := ParseDeadlyEnemies("B3/S23DeadlyEnemies")
	require.NoError(t, err)

	n := func(states ...int) []int {
		out := make([]int, 8)
		copy(out, states)
		return out
	}
	assert.Equal(t, 1, sym.Transition(n(2), 1, 0, core.Coordinate{}))
	assert.Equal(t, 0, deadly.Transition(n(2), 1, 0, core.Coordinate{}))
	assert.Equal(t, 1, sym.Transition(n(1, 1, 1), 0, 0, core.Coordinate{}))
	assert.Equal(t, 2, deadly.Transition(n(2, 2, 2), 0, 0, core.Coordinate{}))
	assert.Equal(t, 0, sym.Transition(n(1, 1, 2), 0, 0, core.Coordinate{}))
	assert.Equal(t, 2, sym.Transition(n(2, 2), 2, 0, core.Coordinate{}))
	assert.Equal(t, 0, sym.Transition(n(2), 2, 0, core.Coordinate{}))
}

func TestGenerationsTransition(t *testing.T) {
	g, err := ParseGenerations("12/34/3")
	require.NoError(t, err)

	n := func(states ...int) []int {
		out := make([]int, 8)
		copy(out, states)
		return out
	}
	assert.Equal(t, 1, g.Transition(n(1, 1, 1), 0, 0, core.Coordinate{}))
	assert.Equal(t, 0, g.Transition(n(1, 1, 2, 2), 0, 0, core.Coordinate{}))
	assert.Equal(t, 1, g.Transition(n(1, 2), 1, 0, core.Coordinate{}))
	assert.Equal(t, 2, g.Transition(n(1, 1, 1), 1, 0, core.Coordinate{}))

	next, ok := g.Independent(2, 0, core.Coordinate{})
	assert.True(t, ok)
	assert.Equal(t, 0, next)
	_, ok = g.Independent(1, 0, core.Coordinate{})
	assert.False(t, ok)
}

func TestGenerationsStateWeights(t *testing.T) {
	g, err := ParseGenerations("R1,C3,S2,B3,NW111101111,012")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, g.StateWeights)
	assert.Equal(t, "R1,C3,S2,B3,NW111101111,012", g.Rulestring())

	n := func(states ...int) []int {
		out := make([]int, len(g.Cells))
		copy(out, states)
		return out
	}
	assert.Equal(t, 1, g.Transition(n(1, 2), 0, 0, core.Coordinate{}))

	_, err = ParseGenerations("R1,C3,S2,B3,NM,012")
	assert.ErrorIs(t, err, rules.ErrInvalidRule)
}

func TestBSFKLTransition(t *testing.T) {
	b, err := ParseBSFKL("R1,B3,S2-3,F0,K1,L0-2,NM")
	require.NoError(t, err)

	n := func(states ...int) []int {
		out := make([]int, 8)
		copy(out, states)
		return out
	}
	assert.Equal(t, 1, b.Transition(n(1, 1, 1), 0, 0, core.Coordinate{}))
	assert.Equal(t, 0, b.Transition(n(1, 1, 1, 2), 0, 0, core.Coordinate{}))
	assert.Equal(t, 0, b.Transition(n(1, 1, 2), 1, 0, core.Coordinate{}))
	assert.Equal(t, 1, b.Transition(n(1, 1), 1, 0, core.Coordinate{}))
	assert.Equal(t, 2, b.Transition(n(1), 1, 0, core.Coordinate{}))
	assert.Equal(t, 0, b.Transition(n(1, 1), 2, 0, core.Coordinate{}))
	assert.Equal(t, 2, b.Transition(n(1, 1, 1), 2, 0, core.Coordinate{}))
}

func TestBSFKLMinMaxContainsRule(t *testing.T) {
	b, err := ParseBSFKL("R1,B3,S2-3,F0,K1,L0-2,NM")
	require.NoError(t, err)
	grids := evolve(t, b, "3o$o$bo!", 6)

	lo, hi, err := b.MinMax(grids)
	require.NoError(t, err)
	assert.True(t, b.ValidMinMax(lo, hi))
	assert.True(t, b.Between(lo, hi))

	r, err := b.Randomise(lo, hi, pcore.NewRNG(3))
	require.NoError(t, err)
	assert.True(t, r.(*BSFKL).Between(lo, hi))
}

func TestSpeciesMinMaxContainsRule(t *testing.T) {
	sym, err := ParseSymbiosis("B3/S23Symbiosis")
	require.NoError(t, err)
	grids := evolve(t, sym, "bo$2bo$3o5$5bB$6bB$4b3B!", 8)

	lo, hi, err := sym.MinMax(grids)
	require.NoError(t, err)
	assert.True(t, sym.Between(lo, hi))
}

func TestCyclicClosure(t *testing.T) {
	c, err := ParseCyclic("B002/M/M/S000011l-0l-0l-0/C4")
	require.NoError(t, err)

	out, ok := c.Lookup(0, []int{0, 0, 2})
	assert.True(t, ok)
	assert.Equal(t, 1, out)

	out, ok = c.Lookup(0, []int{2, 0, 0})
	assert.True(t, ok)
	assert.Equal(t, 2, out)

	out, ok = c.Lookup(2, []int{0, 0, 0})
	assert.True(t, ok)
	assert.Equal(t, 2, out)

	_, ok = c.Lookup(1, []int{8, 0, 0})
	assert.False(t, ok)
	out, ok = c.Lookup(1, []int{1, 1, 1})
	assert.True(t, ok)
	assert.Equal(t, 1, out)
	_, ok = c.Lookup(0, []int{1, 0, 0})
	assert.False(t, ok)

	n := make([]int, 8)
	n[0], n[1] = 1, 1
	assert.Equal(t, 2, c.Transition(n, 0, 0, core.Coordinate{}))
}

func TestCyclicMutation(t *testing.T) {
	c, err := ParseCyclic("B30/M20/S/C3")
	require.NoError(t, err)

	out, ok := c.Lookup(1, []int{2, 0})
	assert.True(t, ok)
	assert.Equal(t, 2, out)
	out, ok = c.Lookup(2, []int{0, 2})
	assert.True(t, ok)
	assert.Equal(t, 1, out)
}

func TestCyclicHasNoMinMax(t *testing.T) {
	r, err := rules.Parse("B30/M/S2030ll-0/C3")
	require.NoError(t, err)
	_, ok := r.(rules.MinMaxRule)
	assert.False(t, ok)
}
