package hrot

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"casearch/internal/rules"
	"casearch/internal/rules/ruletable"
)

// Ruletable exports the rule as a permute-symmetric table. Weighted
// neighbourhoods and B0 rules have no such form.
func (h *HROT) Ruletable() (*ruletable.Table, error) {
	if h.Weights != nil || h.Birth.Has(0) {
		return nil, rules.Unsupported(h.Name(), "ruletable export")
	}
	t := ruletable.NewTable(2, slices.Clone(h.Cells))
	t.Tile = h.Tile
	if err := t.SetSymmetry("permute"); err != nil {
		return nil, err
	}
	t.AddVariable(&ruletable.Variable{Name: "any", Unbound: true, Values: []int{0, 1}})
	for _, n := range h.Birth.Sorted() {
		if n > len(h.Cells) {
			continue
		}
		if err := t.AddOuterTotalistic(n, "0", "1", "0", "1"); err != nil {
			return nil, err
		}
	}
	for _, n := range h.Survival.Sorted() {
		if n > len(h.Cells) {
			continue
		}
		if err := t.AddOuterTotalistic(n, "1", "1", "0", "1"); err != nil {
			return nil, err
		}
	}
	if err := t.AddOuterTotalistic(0, "1", "0", "any", "any"); err != nil {
		return nil, err
	}
	return t, nil
}

// Ruletable exports the cyclic transition table with permute symmetry.
func (c *Cyclic) Ruletable() (*ruletable.Table, error) {
	t := ruletable.NewTable(c.States, slices.Clone(c.Cells))
	t.Tile = c.Tile
	if err := t.SetSymmetry("permute"); err != nil {
		return nil, err
	}
	wild := &ruletable.Variable{Name: "any", Unbound: true}
	for s := 0; s < c.States; s++ {
		wild.Values = append(wild.Values, s)
	}
	t.AddVariable(wild)

	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		state, counts := decodeCyclicKey(k)
		tokens := []string{strconv.Itoa(state)}
		for s, n := range counts {
			for i := 0; i < n; i++ {
				tokens = append(tokens, strconv.Itoa(s+1))
			}
		}
		for len(tokens) <= len(c.Cells) {
			tokens = append(tokens, "0")
		}
		tokens = append(tokens, strconv.Itoa(c.table[k]))
		if err := t.AddTransition(strings.Join(tokens, ",")); err != nil {
			return nil, err
		}
	}
	for s := 1; s < c.States; s++ {
		if err := t.AddOuterTotalistic(0, strconv.Itoa(s), "0", "any", "any"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeCyclicKey(k string) (int, []int) {
	buf := []byte(k)
	var vals []int
	for len(buf) > 0 {
		v, n := binary.Uvarint(buf)
		vals = append(vals, int(v))
		buf = buf[n:]
	}
	return vals[0], vals[1:]
}
