package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gliderGrid(t *testing.T) *Grid {
	t.Helper()
	g, provisional := FromRLE("bo$2bo$3o!")
	require.False(t, provisional)
	return g
}

func TestGridSetZeroDeletes(t *testing.T) {
	g := NewGrid()
	g.Set(C(1, 2), 3)
	g.Set(C(1, 2), 0)
	if g.Population() != 0 {
		t.Fatalf("expected empty grid, got population %d", g.Population())
	}
	if _, _, ok := g.Bounds(); ok {
		t.Fatalf("expected no bounds for empty grid")
	}
}

func TestGridBoundsTrackDeletes(t *testing.T) {
	g := gliderGrid(t)
	lo, hi, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, C(0, 0), lo)
	assert.Equal(t, C(2, 2), hi)

	g.Set(C(1, 0), 0)
	lo, hi, _ = g.Bounds()
	assert.Equal(t, C(0, 1), lo)
	assert.Equal(t, C(2, 2), hi)
}

func TestGridCoordinatesSorted(t *testing.T) {
	g := gliderGrid(t)
	assert.Equal(t, []Coordinate{C(0, 2), C(1, 0), C(1, 2), C(2, 1), C(2, 2)}, g.Coordinates())
}

func TestGridHashTranslationInvariant(t *testing.T) {
	g := gliderGrid(t)
	moved := NewGrid()
	moved.Insert(g, C(-7, 13))
	assert.Equal(t, g.Hash(), moved.Hash())
	assert.True(t, moved.SlowEquals(g, -7, 13))
	assert.False(t, moved.SlowEquals(g, 0, 0))

	other := g.Clone()
	other.Set(C(5, 5), 1)
	assert.NotEqual(t, g.Hash(), other.Hash())
}

func TestGridHashOfUsesOrigin(t *testing.T) {
	g := gliderGrid(t)
	coords := g.Coordinates()
	moved := NewGrid()
	moved.Insert(g, C(3, 4))
	shifted := make([]Coordinate, len(coords))
	for i, c := range coords {
		shifted[i] = c.Add(C(3, 4))
	}
	assert.Equal(t, g.HashOf(coords, C(0, 0)), moved.HashOf(shifted, C(3, 4)))
}

func TestGridActualSwapsBackground(t *testing.T) {
	g := NewGrid()
	g.Set(C(0, 0), 1)
	g.Set(C(1, 0), 2)
	g.SetBackground(1)
	assert.Equal(t, 0, g.Actual(C(0, 0)))
	assert.Equal(t, 2, g.Actual(C(1, 0)))
	assert.Equal(t, 1, g.Actual(C(9, 9)))
}

func TestGridSubGridAndClearRect(t *testing.T) {
	g := gliderGrid(t)
	sub := g.SubGrid(C(0, 2), C(2, 2))
	assert.Equal(t, 3, sub.Population())
	g.ClearRect(C(0, 2), C(2, 2))
	assert.Equal(t, 2, g.Population())
}

func TestGridRotateFourTimesIsIdentity(t *testing.T) {
	g := gliderGrid(t)
	want := g.Clone()
	for i := 0; i < 4; i++ {
		g.RotateCW(C(0, 0), C(2, 2))
	}
	assert.True(t, g.SlowEquals(want, 0, 0))

	g.RotateCW(C(0, 0), C(2, 2))
	g.RotateCCW(C(0, 0), C(2, 2))
	assert.True(t, g.SlowEquals(want, 0, 0))
}

func TestGridReflect(t *testing.T) {
	g := gliderGrid(t)
	g.ReflectX(C(0, 0), C(2, 2))
	assert.Equal(t, "bo$o$3o!", g.ToRLE(2))
	g.ReflectY(C(0, 0), C(2, 2))
	assert.Equal(t, "3o$o$bo!", g.ToRLE(2))
}

func TestGridBFS(t *testing.T) {
	g := NewGrid()
	g.Set(C(0, 0), 1)
	vonNeumann := []Coordinate{C(1, 0), C(-1, 0), C(0, 1), C(0, -1)}
	assert.Len(t, g.BFS(0, vonNeumann), 1)
	assert.Len(t, g.BFS(1, vonNeumann), 5)
	assert.Len(t, g.BFS(2, vonNeumann), 13)
}
