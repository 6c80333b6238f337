package rules

import (
	"casearch/internal/core"
)

// History is the ring of recently changed cells that bounds the frontier of
// the stepping engine. Slot 0 holds cells changed in the last generation;
// an unchanged cell moves one slot on and drops out after the last.
type History struct {
	slots []map[core.Coordinate]struct{}
}

// NewHistory returns a ring with period slots.
func NewHistory(period int) *History {
	h := &History{slots: make([]map[core.Coordinate]struct{}, max(period, 1))}
	for i := range h.slots {
		h.slots[i] = make(map[core.Coordinate]struct{})
	}
	return h
}

// Period is the number of slots.
func (h *History) Period() int { return len(h.slots) }

// Touch marks c as changed in the current generation.
func (h *History) Touch(c core.Coordinate) {
	for i := 1; i < len(h.slots); i++ {
		delete(h.slots[i], c)
	}
	h.slots[0][c] = struct{}{}
}

// Settle records that c did not change, retiring it one slot.
func (h *History) Settle(c core.Coordinate) {
	for i, slot := range h.slots {
		if _, ok := slot[c]; !ok {
			continue
		}
		delete(slot, c)
		if i+1 < len(h.slots) {
			h.slots[i+1][c] = struct{}{}
		}
		return
	}
}

// Contains reports whether c is in slot i.
func (h *History) Contains(i int, c core.Coordinate) bool {
	_, ok := h.slots[i][c]
	return ok
}

// Frontier returns every cell in the ring accepted by include (nil accepts
// all).
func (h *History) Frontier(include func(core.Coordinate) bool) map[core.Coordinate]struct{} {
	out := make(map[core.Coordinate]struct{})
	for _, slot := range h.slots {
		for c := range slot {
			if include == nil || include(c) {
				out[c] = struct{}{}
			}
		}
	}
	return out
}

// Len is the number of distinct cells in the ring.
func (h *History) Len() int { return len(h.Frontier(nil)) }

// Reset empties every slot and resizes the ring to period.
func (h *History) Reset(period int) {
	*h = *NewHistory(period)
}

// Clone deep-copies the ring.
func (h *History) Clone() *History {
	cp := NewHistory(len(h.slots))
	for i, slot := range h.slots {
		for c := range slot {
			cp.slots[i][c] = struct{}{}
		}
	}
	return cp
}

// Equal reports whether both rings hold the same cells in the same slots.
func (h *History) Equal(o *History) bool {
	if len(h.slots) != len(o.slots) {
		return false
	}
	for i := range h.slots {
		if len(h.slots[i]) != len(o.slots[i]) {
			return false
		}
		for c := range h.slots[i] {
			if _, ok := o.slots[i][c]; !ok {
				return false
			}
		}
	}
	return true
}
