package core

import "testing"

func TestForIterationIndependentOfOrder(t *testing.T) {
	a := ForIteration(42, 7)
	ForIteration(42, 3).IntN(100)
	b := ForIteration(42, 7)
	for i := 0; i < 16; i++ {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestFillSoupDensityBounds(t *testing.T) {
	r := NewRNG(1)
	n := 0
	r.FillSoup(8, 8, 2, 1, func(x, y, state int) {
		if state != 1 {
			t.Fatalf("unexpected state %d", state)
		}
		n++
	})
	if n != 64 {
		t.Fatalf("expected full soup, got %d cells", n)
	}
	r.FillSoup(8, 8, 2, 0, func(x, y, state int) {
		t.Fatalf("empty density produced a cell")
	})
}
