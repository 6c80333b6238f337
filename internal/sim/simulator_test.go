package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/patterns"
	"casearch/internal/rules"
	_ "casearch/internal/rules/all"
)

func load(t *testing.T, rule, rle string) *Simulator {
	t.Helper()
	r, err := rules.Parse(rule)
	require.NoError(t, err)
	g, provisional := core.FromRLE(rle)
	require.False(t, provisional)
	s := New(r)
	s.Insert(g, core.Coordinate{})
	return s
}

func TestStepBlinker(t *testing.T) {
	s := load(t, "B3/S23", "3o!")
	s.Step()
	assert.Equal(t, 1, s.Generation())
	assert.Equal(t, 1, s.Get(core.C(1, -1)))
	assert.Equal(t, 1, s.Get(core.C(1, 1)))
	assert.Equal(t, 0, s.Get(core.C(0, 0)))
	s.Step()
	assert.Equal(t, 1, s.Get(core.C(0, 0)))
	assert.Equal(t, 3, s.Population())
}

func TestCloneIsIndependent(t *testing.T) {
	s := load(t, "B3/S23", "bo$2bo$3o!")
	cp := s.Clone()
	for i := 0; i < 4; i++ {
		cp.Step()
	}
	assert.Equal(t, 0, s.Generation())
	assert.Equal(t, 4, cp.Generation())

	lo, _, _ := cp.Grid().Bounds()
	assert.Equal(t, core.C(1, 1), lo)
	lo, _, _ = s.Grid().Bounds()
	assert.Equal(t, core.C(0, 0), lo)
}

func TestSetRuleClearsExtraStates(t *testing.T) {
	s := load(t, "12/34/3", "A2B!")
	require.Equal(t, 3, s.Population())
	life, err := rules.Parse("B3/S23")
	require.NoError(t, err)
	s.SetRule(life)
	assert.Equal(t, 1, s.Population())
}

func TestClearRect(t *testing.T) {
	s := load(t, "B3/S23", "2o$2o!")
	s.ClearRect(core.C(0, 0), core.C(0, 1))
	assert.Equal(t, 2, s.Population())
	s.Step()
	assert.Equal(t, 0, s.Population())
}

func TestIdentifyStillLife(t *testing.T) {
	s := load(t, "B3/S23", "2o$2o!")
	p, err := s.Identify(100, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.StillLife())
	assert.Equal(t, "Still Life", p.String())
	assert.Equal(t, 4, p.Stator)
	assert.Equal(t, 0, p.Rotor)
}

func TestIdentifyOscillator(t *testing.T) {
	s := load(t, "B3/S23", "3o!")
	p, err := s.Identify(100, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, patterns.Oscillator, p.Kind)
	assert.Equal(t, 2, p.Period)
	assert.Equal(t, 4, p.Rotor)
	assert.Equal(t, 1, p.Stator)

	require.NotNil(t, p.MinRule)
	require.NotNil(t, p.MaxRule)
	assert.True(t, p.Rule.(rules.MinMaxRule).Between(p.MinRule, p.MaxRule))
}

func TestIdentifyGlider(t *testing.T) {
	s := load(t, "B3/S23", "bo$2bo$3o!")
	p, err := s.Identify(100, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, patterns.Spaceship, p.Kind)
	assert.Equal(t, 4, p.Period)
	assert.Equal(t, core.C(1, 1), p.Displacement)
	assert.Equal(t, "(1,1)c/4", p.String())
	assert.Equal(t, 5, p.Grid.Population())
	assert.Len(t, p.Populations, 4)
}

func TestIdentifySpaceshipIsRuleIndependent(t *testing.T) {
	// The glider also flies in B36/S23 and the inferred range covers both.
	s := load(t, "B36/S23", "bo$2bo$3o!")
	p, err := s.Identify(100, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, patterns.Spaceship, p.Kind)

	life, err := rules.Parse("B3/S23")
	require.NoError(t, err)
	assert.True(t, life.(rules.MinMaxRule).Between(p.MinRule, p.MaxRule))
}

func TestIdentifyLinearGrowth(t *testing.T) {
	s := load(t, "W2", "o!")
	p, err := s.Identify(30, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, patterns.LinearGrowth, p.Kind)
	assert.Equal(t, 1, p.PopulationPeriod)
}

func TestIdentifyPowerLaw(t *testing.T) {
	s := load(t, "B12345678/S012345678", "o!")
	p, err := s.Identify(40, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, patterns.PowerLaw, p.Kind)
	assert.Greater(t, p.Power, 2.0)
}

func TestIdentifyKeepGoingAborts(t *testing.T) {
	s := load(t, "B12345678/S012345678", "o!")
	p, err := s.Identify(100, func(g *core.Grid) bool { return g.Population() < 50 })
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 4, s.Generation())
}

func TestIdentifyWithoutSolver(t *testing.T) {
	s := load(t, "W110", "o!")
	p, err := s.Identify(12, nil)
	require.NoError(t, err)
	if p != nil {
		assert.Nil(t, p.MinRule)
	}
}

func TestFrontierEmptiesForStillLife(t *testing.T) {
	s := load(t, "B3/S23", "2o$2o!")
	assert.Len(t, s.Frontier(), 4)
	s.Step()
	assert.Empty(t, s.Frontier())

	s = load(t, "B3/S23", "3o!")
	s.Step()
	assert.NotEmpty(t, s.Frontier())
}
