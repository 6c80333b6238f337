package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// ForIteration returns the RNG for one search iteration. The stream depends
// only on the run seed and the iteration index, never on scheduling.
func ForIteration(seed int64, index int) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), uint64(index)+1))}
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// FillSoup sets each cell of a w*h box to a random state in [1, states)
// with the given density, calling set for live cells.
func (r *RNG) FillSoup(w, h, states int, density float64, set func(x, y, state int)) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r.r.Float64() < density {
				set(x, y, 1+r.IntN(max(states-1, 1)))
			}
		}
	}
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
