package isotropic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/rules"
	"casearch/internal/rules/hrot"
	pcore "casearch/pkg/core"
)

var canonicalInputs = []string{
	"B2n3/S23-q",
	"B2a/S",
	"B2-a/S12",
	"B3aceikn/S",
	"B3ce/S2-ak",
	"B3y2c/S",
	"B2e3-q/S2-i3:T10",
	"b2i3/s2ek",
	"B2cekain/S",
	"B3x/S2x3x/NV2",
	"B0xd1ca1ea/S/NV2",
	"B0xc1ca/S/NV2",
	"B1ca/S1x-0xc/NV2",
	"B1ca2x/S_NV2",
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

func binomial(n, k int) int {
	out := 1
	for i := 0; i < k; i++ {
		out = out * (n - i) / (i + 1)
	}
	return out
}

func TestLookupCoversEveryConfiguration(t *testing.T) {
	for _, tc := range []struct {
		lookup  *Lookup
		classes int
	}{
		{Moore(), 51},
		{VonNeumann2(), 618},
	} {
		l := tc.lookup
		assert.Equal(t, tc.classes, l.Len())

		n := len(l.Cells())
		sizes := make([]int, n+1)
		for i := 0; i < l.Len(); i++ {
			rep := l.Representative(i)
			require.NotNil(t, rep, l.Name(i))
			assert.Equal(t, i, l.Classify(rep), l.Name(i))
			sizes[l.Count(i)] += len(l.Group().Apply(rep))
		}
		for k, size := range sizes {
			assert.Equal(t, binomial(n, k), size, "configurations with %d live cells", k)
		}
	}
}

func TestDoubleLetterAliases(t *testing.T) {
	l := VonNeumann2()
	c, ok := l.Index("0xc")
	require.True(t, ok)
	for _, alias := range []string{"0xd", "0xe", "0xf"} {
		i, ok := l.Index(alias)
		require.True(t, ok, alias)
		assert.Equal(t, c, i, alias)
	}
	assert.Equal(t, "0xc", l.Name(c))
}

func TestHenselLetters(t *testing.T) {
	r := MustParseINT("B2a/S")
	assert.Equal(t, 1, r.Transition([]int{1, 1, 0, 0, 0, 0, 0, 0}, 0, 0, core.Coordinate{}))
	assert.Equal(t, 1, r.Transition([]int{0, 0, 0, 1, 1, 0, 0, 0}, 0, 0, core.Coordinate{}))
	assert.Equal(t, 0, r.Transition([]int{0, 1, 0, 0, 0, 1, 0, 0}, 0, 0, core.Coordinate{}))
	assert.Equal(t, 0, r.Transition([]int{1, 1, 0, 0, 0, 0, 0, 0}, 1, 0, core.Coordinate{}))
}

func TestNegationRemovesLetter(t *testing.T) {
	r := MustParseINT("B3-q/S")
	assert.Len(t, r.Birth, 9)
	q, ok := r.Lookup().Index("3q")
	require.True(t, ok)
	assert.False(t, r.Birth.Has(q))
}

func TestDoubleLetterTransition(t *testing.T) {
	r := MustParseINT("B1x-0xc/S/NV2")
	assert.Len(t, r.Neighbourhood(0), 12)

	outer := make([]int, 12)
	outer[8] = 1
	inner := make([]int, 12)
	inner[1] = 1
	assert.Equal(t, 0, r.Transition(outer, 0, 0, core.Coordinate{}))
	assert.Equal(t, 1, r.Transition(inner, 0, 0, core.Coordinate{}))
}

func TestRejectsInvalid(t *testing.T) {
	for _, s := range []string{"B1k/S", "B0c/S", "B4xc/S/NV2", "B13x/S/NV2", "B2a/S/NV3"} {
		_, err := rules.Parse(s)
		assert.ErrorIs(t, err, rules.ErrInvalidRule, s)
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

func TestTotalisticMatchesHROT(t *testing.T) {
	isotropic := evolve(t, MustParseINT("B3/S23"), "b2o$2o$bo!", 30)
	totalistic := evolve(t, hrot.MustParseHROT("B3/S23"), "b2o$2o$bo!", 30)
	for i := range isotropic {
		assert.True(t, isotropic[i].SlowEquals(totalistic[i], 0, 0), "generation %d", i)
	}
}

func TestB0Background(t *testing.T) {
	assert.Equal(t, []int{1}, MustParseINT("B0/S8").Background())
	assert.Equal(t, []int{0, 1}, MustParseINT("B02a/S").Background())
	assert.Equal(t, []int{0}, MustParseINT("B2a/S").Background())
}

func TestMinMaxContainsRule(t *testing.T) {
	life := MustParseINT("B3/S23")
	grids := evolve(t, life, "bo$2bo$3o!", 8)

	lo, hi, err := life.MinMax(grids)
	require.NoError(t, err)
	minRule, maxRule := lo.(*INT), hi.(*INT)

	assert.NotEmpty(t, minRule.Birth)
	assert.True(t, minRule.Birth.SubsetOf(life.Birth))
	assert.True(t, life.Survival.SubsetOf(maxRule.Survival))
	empty, _ := life.Lookup().Index("0")
	assert.False(t, maxRule.Birth.Has(empty))
	assert.True(t, life.ValidMinMax(lo, hi))
	assert.True(t, life.Between(lo, hi))

	rng := pcore.NewRNG(11)
	for i := 0; i < 20; i++ {
		r, err := life.Randomise(lo, hi, rng)
		require.NoError(t, err)
		got := r.(*INT)
		assert.True(t, got.Between(lo, hi), got.Rulestring())

		again := evolve(t, got, "bo$2bo$3o!", 4)
		assert.True(t, again[4].SlowEquals(again[0], 1, 1), got.Rulestring())
	}
}

func TestMinMaxWidensWithUniverse(t *testing.T) {
	life := MustParseINT("B3/S23")
	grids := evolve(t, life, "bo$2bo$3o!", 8)

	narrow := make(Transitions)
	for i := 0; i < life.Lookup().Len(); i++ {
		if life.Lookup().Count(i) <= 4 {
			narrow[i] = struct{}{}
		}
	}
	require.True(t, narrow.SubsetOf(life.Lookup().All()))

	loN, hiN, err := life.minMaxWithin(grids, narrow)
	require.NoError(t, err)
	loW, hiW, err := life.minMaxWithin(grids, life.Lookup().All())
	require.NoError(t, err)
	minN, maxN, minW, maxW := loN.(*INT), hiN.(*INT), loW.(*INT), hiW.(*INT)

	assert.True(t, minW.Birth.SubsetOf(minN.Birth))
	assert.True(t, minW.Survival.SubsetOf(minN.Survival))
	assert.True(t, maxN.Birth.SubsetOf(maxW.Birth))
	assert.True(t, maxN.Survival.SubsetOf(maxW.Survival))
	assert.True(t, life.ValidMinMax(loN, hiN))
	assert.True(t, life.ValidMinMax(loW, hiW))
	assert.True(t, life.Between(loN, hiN))
	assert.True(t, life.Between(loW, hiW))
}

func TestRandomiseRejectsMixedNeighbourhoods(t *testing.T) {
	r := MustParseINT("B2a/S")
	_, err := r.Randomise(MustParseINT("B1x/S/NV2"), MustParseINT("B1x2x/S/NV2"), pcore.NewRNG(1))
	assert.ErrorIs(t, err, rules.ErrInvalidRule)
}

func TestRuletableAgreesWithTransition(t *testing.T) {
	for _, s := range []string{"B2n3/S23-q", "B2-a3ce/S1e2k", "B1ca2x/S1x-0xc/NV2"} {
		r := MustParseINT(s)
		table, err := r.Ruletable()
		require.NoError(t, err, s)

		n := len(r.Neighbourhood(0))
		for mask := 0; mask < 1<<n; mask++ {
			neighbours := unmask(mask, n)
			for state := 0; state < 2; state++ {
				want := r.Transition(neighbours, state, 0, core.Coordinate{})
				require.Equal(t, want, table.Apply(state, neighbours), "%s state %d mask %b", s, state, mask)
			}
		}
	}

	_, err := MustParseINT("B0/S").Ruletable()
	assert.ErrorIs(t, err, rules.ErrUnsupported)
}
