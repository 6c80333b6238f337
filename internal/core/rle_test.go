package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRLEGlider(t *testing.T) {
	g, provisional := FromRLE("bo$2bo$3o!")
	require.False(t, provisional)
	expected := map[Coordinate]int{
		C(1, 0): 1, C(2, 1): 1, C(0, 2): 1, C(1, 2): 1, C(2, 2): 1,
	}
	if g.Population() != len(expected) {
		t.Fatalf("expected %d cells, got %d", len(expected), g.Population())
	}
	for c, s := range expected {
		if g.Get(c) != s {
			t.Fatalf("cell %v: expected %d, got %d", c, s, g.Get(c))
		}
	}
}

func TestRLERoundTrip(t *testing.T) {
	for _, body := range []string{"bo$2bo$3o!", "3o!", "o2$o!", "2o$2o!"} {
		g, _ := FromRLE(body)
		assert.Equal(t, body, g.ToRLE(2), body)
	}
}

func TestRLEMultistateRoundTrip(t *testing.T) {
	g := NewGrid()
	g.Set(C(0, 0), 1)
	g.Set(C(1, 0), 2)
	g.Set(C(3, 0), 24)
	g.Set(C(0, 1), 25)
	g.Set(C(1, 1), 49)

	body := g.ToRLE(50)
	assert.Equal(t, "AB.X$pAqA!", body)

	back, provisional := FromRLE(body)
	require.False(t, provisional)
	assert.True(t, back.SlowEquals(g, 0, 0))
}

func TestFromRLEDropsUnknownTokens(t *testing.T) {
	g, provisional := FromRLE("o#o!")
	assert.True(t, provisional)
	assert.Equal(t, 2, g.Population())
	assert.Equal(t, 1, g.Get(C(1, 0)))
}

func TestFromApgcode(t *testing.T) {
	block, err := FromApgcode("xs4_33")
	require.NoError(t, err)
	assert.Equal(t, "2o$2o!", block.ToRLE(2))

	glider, err := FromApgcode("xq4_153")
	require.NoError(t, err)
	assert.Equal(t, 5, glider.Population())

	_, err = FromApgcode("not-a-code")
	assert.ErrorIs(t, err, ErrBadApgcode)
}
