package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
	"casearch/internal/rules/hrot"
)

func blinkerPhases() []*core.Grid {
	horizontal := core.NewGrid()
	vertical := core.NewGrid()
	for i := -1; i <= 1; i++ {
		horizontal.Set(core.C(i, 0), 1)
		vertical.Set(core.C(0, i), 1)
	}
	return []*core.Grid{horizontal, vertical, horizontal.Clone()}
}

func TestDescriptions(t *testing.T) {
	life := hrot.MustParseHROT("B3/S23")
	g := core.NewGrid()
	g.Set(core.C(0, 0), 1)

	assert.Equal(t, "Still Life", NewOscillator(life, g, 1).String())
	assert.Equal(t, "P3 Oscillator", NewOscillator(life, g, 3).String())
	assert.Equal(t, "(1,1)c/4", NewSpaceship(life, g, 4, core.C(1, 1)).String())
	assert.Equal(t, "Catalyst of repeat time 12", NewCatalyst(life, g, 12, false).String())
	assert.Equal(t, "Partial catalyst of repeat time 5", NewCatalyst(life, g, 5, true).String())
	assert.Equal(t, "Linear Growth", NewLinearGrowth(life, g, 30).String())
	assert.Equal(t, "zz_LINEAR", NewPowerLaw(life, g, 1.9).String())
}

func TestPowerLabel(t *testing.T) {
	assert.Equal(t, "zz_REPLICATOR", PowerLabel(1.2))
	assert.Equal(t, "zz_LINEAR", PowerLabel(1.65))
	assert.Equal(t, "zz_EXPLOSIVE", PowerLabel(2.5))
	assert.Equal(t, "zz_QUADRATIC", PowerLabel(3))
}

func TestOblique(t *testing.T) {
	life := hrot.MustParseHROT("B3/S23")
	g := core.NewGrid()
	assert.False(t, NewSpaceship(life, g, 4, core.C(1, 1)).Oblique())
	assert.False(t, NewSpaceship(life, g, 4, core.C(0, 2)).Oblique())
	assert.True(t, NewSpaceship(life, g, 6, core.C(2, 1)).Oblique())
	assert.False(t, NewOscillator(life, g, 2).Oblique())
}

func TestSetPhasesBlinker(t *testing.T) {
	p := NewOscillator(hrot.MustParseHROT("B3/S23"), core.NewGrid(), 2)
	p.SetPhases(blinkerPhases())

	assert.Equal(t, 4, p.Rotor)
	assert.Equal(t, 1, p.Stator)
	assert.InDelta(t, 4.0, p.Heat, 1e-9)
	require.Len(t, p.Populations, 2)
	assert.Equal(t, []int{0, 3}, p.Populations[0])
	assert.Equal(t, 3, p.Grid.Population())
}

func TestGenerateMinMax(t *testing.T) {
	life := hrot.MustParseHROT("B3/S23")
	p := NewOscillator(life, core.NewGrid(), 2)
	require.NoError(t, p.GenerateMinMax(blinkerPhases()))
	require.NotNil(t, p.MinRule)
	require.NotNil(t, p.MaxRule)
	assert.True(t, life.Between(p.MinRule, p.MaxRule))

	info := p.Info()
	assert.Equal(t, "Minimum Rule", info[len(info)-2].Name)
}

func TestKeyDistinguishesRules(t *testing.T) {
	g := core.NewGrid()
	a := NewOscillator(hrot.MustParseHROT("B3/S23"), g, 2)
	b := NewOscillator(hrot.MustParseHROT("B36/S23"), g, 2)
	assert.Equal(t, a.Key(), b.Key())

	a.MinRule, a.MaxRule = hrot.MustParseHROT("B3/S2"), hrot.MustParseHROT("B36/S23")
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestDeepPeriod(t *testing.T) {
	// Population growing by 5 every 3 generations with a wobble.
	seq := make([]int, 120)
	wobble := []int{0, 2, 1}
	for i := range seq {
		seq[i] = 5*(i/3) + wobble[i%3]
	}
	assert.Equal(t, 3, DeepPeriod(seq, 40, 1))

	flat := make([]int, 120)
	for i := range flat {
		flat[i] = 7
	}
	assert.Equal(t, 1, DeepPeriod(flat, 40, 1))

	chaotic := make([]int, 120)
	for i := range chaotic {
		chaotic[i] = (i * i * 7919) % 101
	}
	assert.Equal(t, -1, DeepPeriod(chaotic, 40, 1))
}

func TestRegress(t *testing.T) {
	// Cumulative population of a pattern whose population grows linearly
	// rises quadratically.
	cumulative := make([]int, 400)
	total := 0
	for i := range cumulative {
		total += 10 * i
		cumulative[i] = total
	}
	assert.InDelta(t, 2.0, Regress(cumulative), 0.05)

	constant := make([]int, 400)
	for i := range constant {
		constant[i] = 20 * (i + 1)
	}
	assert.InDelta(t, 1.0, Regress(constant), 0.05)
}
