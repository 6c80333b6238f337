package rules

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
)

// lifeRule is a minimal B3/S23 rule used to exercise the engine.
type lifeRule struct {
	Base
}

func newLife() *lifeRule {
	return &lifeRule{Base{States: 2, Period: 1, BG: []int{0}}}
}

func (l *lifeRule) Name() string                             { return "life" }
func (l *lifeRule) Neighbourhood(int) []core.Coordinate      { return Moore(1) }
func (l *lifeRule) Rulestring() string                       { return "life" + l.Suffix() }
func (l *lifeRule) Clone() Rule                              { return &lifeRule{l.CloneBase()} }
func (l *lifeRule) Transition(n []int, s, _ int, _ core.Coordinate) int {
	sum := 0
	for _, v := range n {
		sum += v
	}
	if sum == 3 || sum == 2 && s == 1 {
		return 1
	}
	return 0
}

func seeded(t *testing.T, rle string, r Rule) (*core.Grid, *History) {
	t.Helper()
	g, provisional := core.FromRLE(rle)
	require.False(t, provisional)
	h := NewHistory(r.AlternatingPeriod())
	g.Each(func(c core.Coordinate, _ int) { h.Touch(c) })
	return g, h
}

func TestStepBlinker(t *testing.T) {
	r := newLife()
	g, h := seeded(t, "3o!", r)

	Step(r, g, h, 0, nil)
	expected := map[core.Coordinate]int{core.C(1, -1): 1, core.C(1, 0): 1, core.C(1, 1): 1}
	if g.Population() != len(expected) {
		t.Fatalf("expected %d cells, got %d", len(expected), g.Population())
	}
	for c, s := range expected {
		if g.Get(c) != s {
			t.Fatalf("cell %v: expected %d, got %d", c, s, g.Get(c))
		}
	}

	Step(r, g, h, 1, nil)
	assert.Equal(t, "3o!", g.ToRLE(2))
}

func TestStepDeterministic(t *testing.T) {
	r := newLife()
	g, h := seeded(t, "bo$2bo$3o!", r)
	g2, h2 := g.Clone(), h.Clone()

	Step(r, g, h, 0, nil)
	Step(r, g2, h2, 0, nil)
	assert.True(t, g.SlowEquals(g2, 0, 0))
	assert.True(t, h.Equal(h2))
}

func TestStepStillLifeEmptiesFrontier(t *testing.T) {
	r := newLife()
	g, h := seeded(t, "2o$2o!", r)
	Step(r, g, h, 0, nil)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 4, g.Population())
}

func TestStepIncludeRestrictsFrontier(t *testing.T) {
	r := newLife()
	g, h := seeded(t, "3o!", r)
	Step(r, g, h, 0, func(c core.Coordinate) bool { return false })
	assert.Equal(t, "3o!", g.ToRLE(2))
}

func TestStepTorusGliderReturns(t *testing.T) {
	r := newLife()
	r.SetBounded(&core.BoundedGrid{Kind: core.Torus, Width: 6, Height: 6})
	g, h := seeded(t, "bo$2bo$3o!", r)
	start := g.Clone()
	for gen := 0; gen < 24; gen++ {
		Step(r, g, h, gen, nil)
	}
	assert.True(t, g.SlowEquals(start, 0, 0))
}

func TestStepPlaneDiscardsOffGrid(t *testing.T) {
	r := newLife()
	r.SetBounded(&core.BoundedGrid{Kind: core.Plane, Width: 3, Height: 3})
	g, h := seeded(t, "3o!", r)
	Step(r, g, h, 0, nil)
	g.Each(func(c core.Coordinate, _ int) {
		if !r.Bounded().Contains(c) {
			t.Fatalf("cell %v written outside the plane", c)
		}
	})
	assert.Equal(t, 2, g.Population())
}

func TestStepReadingOrderInPlace(t *testing.T) {
	r := newLife()
	r.SetBounded(&core.BoundedGrid{Kind: core.Torus, Width: 8, Height: 8})
	r.SetReadingOrder(Orthogonal{})
	g, h := seeded(t, "3o!", r)
	Step(r, g, h, 0, nil)
	// (0,0) dies first, which starves (1,0) and then (2,0) before any
	// birth row is reached.
	assert.Equal(t, 0, g.Population())
}

func TestOrthogonalOrder(t *testing.T) {
	o := Orthogonal{}
	assert.True(t, o.Less(core.C(5, 0), core.C(0, 1)))
	assert.True(t, o.Less(core.C(0, 1), core.C(1, 1)))
	assert.False(t, o.Less(core.C(1, 1), core.C(1, 1)))
}

func TestHistoryRetiresUnchangedCells(t *testing.T) {
	h := NewHistory(2)
	c := core.C(1, 1)
	h.Touch(c)
	assert.True(t, h.Contains(0, c))
	h.Settle(c)
	assert.True(t, h.Contains(1, c))
	h.Settle(c)
	assert.Equal(t, 0, h.Len())
}

func TestRegistryDispatch(t *testing.T) {
	Register(Family{
		Name:     "test-life",
		Priority: 1000,
		Patterns: []*regexp.Regexp{regexp.MustCompile(`^life$`)},
		Parse:    func(string) (Rule, error) { return newLife(), nil },
	})

	r, err := Parse("life:T10,12")
	require.NoError(t, err)
	assert.Equal(t, "life:T10,12", r.Rulestring())

	r, err = Parse("life:T10:NO")
	require.NoError(t, err)
	assert.Equal(t, "life:T10:NO", r.Rulestring())

	_, err = Parse("life:NO")
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = Parse("nonsense")
	require.ErrorIs(t, err, ErrInvalidRule)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nonsense", pe.Token)
}
