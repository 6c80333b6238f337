package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casearch/internal/core"
)

func TestNeighbourhoodSizes(t *testing.T) {
	cases := []struct {
		symbol byte
		r      int
		size   int
		tiling Tiling
	}{
		{'M', 1, 8, Square},
		{'M', 2, 24, Square},
		{'N', 1, 4, Square},
		{'N', 2, 12, Square},
		{'H', 1, 6, Hexagonal},
		{'C', 1, 8, Square},
		{'2', 2, 12, Square},
		{'+', 2, 8, Square},
		{'X', 2, 8, Square},
		{'*', 1, 8, Square},
		{'L', 1, 12, Triangular},
		{'A', 1, 6, Hexagonal},
		{'3', 1, 3, Hexagonal},
	}
	for _, tc := range cases {
		nbhd, _, tiling := FromSymbol(tc.symbol, tc.r)
		assert.Len(t, nbhd, tc.size, "symbol %c range %d", tc.symbol, tc.r)
		assert.Equal(t, tc.tiling, tiling, "symbol %c", tc.symbol)
	}
}

func TestHexagonalNeighbourhood(t *testing.T) {
	assert.ElementsMatch(t, []core.Coordinate{
		{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
		{X: -1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: -1},
	}, HexagonalNeighbourhood(1))
	assert.Len(t, TriangularNeighbourhood(1), 12)
}

func TestGaussianIncludesCentre(t *testing.T) {
	nbhd, weights := Gaussian(1)
	require.Len(t, nbhd, 9)
	for i, c := range nbhd {
		if c == core.C(0, 0) {
			assert.Equal(t, 4, weights[i])
		}
		if c == core.C(1, 1) {
			assert.Equal(t, 1, weights[i])
		}
	}
}

func TestFromWeights(t *testing.T) {
	nbhd, weights, err := FromWeights("111101111", 1)
	require.NoError(t, err)
	assert.Len(t, nbhd, 8)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1}, weights)

	nbhd, weights, err = FromWeights("F00000002", 1)
	require.NoError(t, err)
	assert.Equal(t, []core.Coordinate{core.C(-1, -1), core.C(1, 1)}, nbhd)
	assert.Equal(t, []int{-7, 2}, weights)

	_, _, err = FromWeights("123", 1)
	assert.Error(t, err)
}

func TestFromCoordCA(t *testing.T) {
	nbhd, err := FromCoordCA("ff", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, Moore(1), nbhd)

	nbhd, err = FromCoordCA("80", 1)
	require.NoError(t, err)
	assert.Equal(t, []core.Coordinate{core.C(1, 1)}, nbhd)
}
