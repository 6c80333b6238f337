// Package symmetry builds permutation groups from disjoint-cycle notation
// and closes neighbour vectors under them.
package symmetry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax reports a malformed cycle description.
var ErrSyntax = errors.New("symmetry: bad cycle notation")

var (
	groupRe = regexp.MustCompile(`^\[(\((\d+,?\s*)+\),?\s*)+]$`)
	listRe  = regexp.MustCompile(`\[[^\]]*]`)
	cycleRe = regexp.MustCompile(`\(([^)]*)\)`)
)

// Group is generated by a list of permutations over 1-based positions.
type Group struct {
	// perms[g][k] is the 1-based position whose value moves to k under g.
	perms [][]int
	desc  string
}

// Parse reads generators written as bracketed lists of disjoint cycles, for
// example "[(1,3,5,7),(2,4,6,8)],[(2,8),(3,7),(4,6)]".
func Parse(s string) (*Group, error) {
	s = strings.TrimSpace(s)
	lists := listRe.FindAllString(s, -1)
	if len(lists) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	var gens [][][]int
	for _, list := range lists {
		if !groupRe.MatchString(list) {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, list)
		}
		var cycles [][]int
		for _, m := range cycleRe.FindAllStringSubmatch(list, -1) {
			var cycle []int
			for _, tok := range strings.Split(m[1], ",") {
				tok = strings.TrimSpace(tok)
				if tok == "" {
					continue
				}
				n, err := strconv.Atoi(tok)
				if err != nil || n < 1 {
					return nil, fmt.Errorf("%w: position %q", ErrSyntax, tok)
				}
				cycle = append(cycle, n)
			}
			cycles = append(cycles, cycle)
		}
		gens = append(gens, cycles)
	}
	g := FromCycles(gens...)
	g.desc = s
	return g, nil
}

// FromCycles builds a group whose generators are the given cycle lists.
func FromCycles(generators ...[][]int) *Group {
	g := &Group{}
	for _, cycles := range generators {
		size := 0
		for _, c := range cycles {
			for _, n := range c {
				size = max(size, n)
			}
		}
		perm := make([]int, size)
		for i := range perm {
			perm[i] = i + 1
		}
		for _, c := range cycles {
			for i := range c {
				perm[c[i]-1] = c[(i+1)%len(c)]
			}
		}
		g.perms = append(g.perms, perm)
	}
	g.desc = describe(generators)
	return g
}

func describe(generators [][][]int) string {
	parts := make([]string, len(generators))
	for i, cycles := range generators {
		cs := make([]string, len(cycles))
		for j, c := range cycles {
			ns := make([]string, len(c))
			for k, n := range c {
				ns[k] = strconv.Itoa(n)
			}
			cs[j] = "(" + strings.Join(ns, ",") + ")"
		}
		parts[i] = "[" + strings.Join(cs, ",") + "]"
	}
	return strings.Join(parts, ",")
}

func (g *Group) String() string { return g.desc }

// Generators is the number of generating permutations.
func (g *Group) Generators() int { return len(g.perms) }

// ApplyGenerator returns vec permuted by generator i. Positions beyond the
// generator's cycles are left in place.
func (g *Group) ApplyGenerator(i int, vec []int) []int {
	perm := g.perms[i]
	out := make([]int, len(vec))
	for k := range vec {
		src := k
		if k < len(perm) && perm[k]-1 < len(vec) {
			src = perm[k] - 1
		}
		out[k] = vec[src]
	}
	return out
}

// Apply returns the orbit of vec under the group, vec first.
func (g *Group) Apply(vec []int) [][]int {
	start := append([]int(nil), vec...)
	seen := map[string]struct{}{key(start): {}}
	orbit := [][]int{start}
	for i := 0; i < len(orbit); i++ {
		for gi := range g.perms {
			img := g.ApplyGenerator(gi, orbit[i])
			k := key(img)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			orbit = append(orbit, img)
		}
	}
	return orbit
}

// Key encodes a vector for use as a map key.
func Key(vec []int) string { return key(vec) }

func key(vec []int) string {
	b := make([]byte, 0, len(vec))
	for _, v := range vec {
		b = binary.AppendUvarint(b, uint64(v))
	}
	return string(b)
}

// Named returns a standard group for a neighbourhood of size cells listed
// clockwise from north. Moore (8) and von Neumann (4) are supported, plus
// hexagonal (6) for the rotations and reflections that exist there.
func Named(name string, size int) (*Group, error) {
	spec, ok := named[size][name]
	if !ok {
		return nil, fmt.Errorf("symmetry: no %q group for %d neighbours", name, size)
	}
	if spec == "" {
		return &Group{desc: name}, nil
	}
	g, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	g.desc = name
	return g, nil
}

var named = map[int]map[string]string{
	8: {
		"none":               "",
		"rotate4":            "[(1,3,5,7),(2,4,6,8)]",
		"rotate4reflect":     "[(1,3,5,7),(2,4,6,8)],[(2,8),(3,7),(4,6)]",
		"rotate8":            "[(1,2,3,4,5,6,7,8)]",
		"rotate8reflect":     "[(1,2,3,4,5,6,7,8)],[(2,8),(3,7),(4,6)]",
		"reflect_horizontal": "[(2,8),(3,7),(4,6)]",
	},
	4: {
		"none":               "",
		"rotate4":            "[(1,2,3,4)]",
		"rotate4reflect":     "[(1,2,3,4)],[(2,4)]",
		"reflect_horizontal": "[(2,4)]",
	},
	6: {
		"none":           "",
		"rotate2":        "[(1,4),(2,5),(3,6)]",
		"rotate3":        "[(1,3,5),(2,4,6)]",
		"rotate6":        "[(1,2,3,4,5,6)]",
		"rotate6reflect": "[(1,2,3,4,5,6)],[(2,6),(3,5)]",
	},
}
