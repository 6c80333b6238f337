package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoundedCanonical(t *testing.T) {
	cases := map[string]string{
		"T20":    "T20",
		"T20,20": "T20",
		"T20,30": "T20,30",
		"P16,0":  "P16,0",
	}
	for in, want := range cases {
		b, err := ParseBounded(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, b.Specifier(), in)
	}
	_, err := ParseBounded("Q4")
	assert.Error(t, err)
}

func TestTorusWraps(t *testing.T) {
	b := &BoundedGrid{Kind: Torus, Width: 8, Height: 6}
	c, ok := b.Map(C(-1, 6))
	require.True(t, ok)
	assert.Equal(t, C(7, 0), c)
}

func TestTorusUnboundedAxis(t *testing.T) {
	b := &BoundedGrid{Kind: Torus, Width: 0, Height: 4}
	c, ok := b.Map(C(-100, 5))
	require.True(t, ok)
	assert.Equal(t, C(-100, 1), c)
}

func TestPlaneDropsOffGrid(t *testing.T) {
	b := &BoundedGrid{Kind: Plane, Width: 4, Height: 4}
	_, ok := b.Map(C(4, 0))
	assert.False(t, ok)
	c, ok := b.Map(C(3, 3))
	assert.True(t, ok)
	assert.Equal(t, C(3, 3), c)
}
