// Package isotropic implements isotropic non-totalistic rules written in
// Hensel notation: the range-1 Moore neighbourhood with single letters and
// the range-2 von Neumann neighbourhood with inner and outer letter pairs.
package isotropic

import (
	"bufio"
	"embed"
	"fmt"
	"math/bits"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"casearch/internal/core"
	"casearch/internal/rules/symmetry"
)

//go:embed tables/*.txt
var tableFS embed.FS

// ring lists the range-1 Moore cells from the north-west corner, clockwise.
var ring = []core.Coordinate{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0},
	{X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0},
}

// outerRing lists the four range-2 von Neumann tips: north, east, south, west.
var outerRing = []core.Coordinate{{X: 0, Y: -2}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 0}}

const (
	mooreGroup       = "[(1,3,5,7),(2,4,6,8)],[(2,8),(3,7),(4,6)]"
	vonNeumann2Group = "[(1,3,5,7),(2,4,6,8),(9,10,11,12)],[(2,8),(3,7),(4,6),(9,12),(10,11)]"
)

// class is one configuration of the neighbourhood up to symmetry.
type class struct {
	// name is the canonical transition name, e.g. "2a" or "2ac".
	name string
	// block is the leading digit of name.
	block int
	// letters follow the block digit; empty for single-configuration counts.
	letters string
	// count is the number of live neighbours.
	count int
	// size is the number of configurations in the class.
	size int
}

// Lookup names every configuration of a neighbourhood up to rotation and
// reflection.
type Lookup struct {
	suffix  string
	double  bool
	cells   []core.Coordinate
	group   *symmetry.Group
	classes []class
	classOf []int
	names   map[string]int
	token   *regexp.Regexp
}

var (
	mooreOnce, vn2Once sync.Once
	moore, vn2         *Lookup
)

// Moore returns the lookup for the range-1 Moore neighbourhood.
func Moore() *Lookup {
	mooreOnce.Do(func() { moore = mustBuild(false) })
	return moore
}

// VonNeumann2 returns the lookup for the range-2 von Neumann neighbourhood.
func VonNeumann2() *Lookup {
	vn2Once.Do(func() { vn2 = mustBuild(true) })
	return vn2
}

// Suffix is the neighbourhood name written after /N, empty for Moore.
func (l *Lookup) Suffix() string { return l.suffix }

// Cells returns the neighbourhood in the order Classify expects.
func (l *Lookup) Cells() []core.Coordinate { return slices.Clone(l.cells) }

// Group is the symmetry group the names are taken under.
func (l *Lookup) Group() *symmetry.Group { return l.group }

// Len is the number of named classes.
func (l *Lookup) Len() int { return len(l.classes) }

// Name returns the canonical name of class i.
func (l *Lookup) Name(i int) string { return l.classes[i].name }

// Count returns the live neighbour count of class i.
func (l *Lookup) Count(i int) int { return l.classes[i].count }

// Index resolves a transition name, aliases included.
func (l *Lookup) Index(name string) (int, bool) {
	i, ok := l.names[name]
	return i, ok
}

// Classify returns the class of a configuration of neighbour states;
// every non-zero state is live.
func (l *Lookup) Classify(neighbours []int) int {
	mask := 0
	for i, v := range neighbours {
		if v != 0 {
			mask |= 1 << i
		}
	}
	return l.classOf[mask]
}

// Representative returns one configuration of class i.
func (l *Lookup) Representative(i int) []int {
	for mask, c := range l.classOf {
		if c == i {
			return unmask(mask, len(l.cells))
		}
	}
	return nil
}

func unmask(mask, n int) []int {
	out := make([]int, n)
	for k := range out {
		out[k] = mask >> k & 1
	}
	return out
}

type entry struct {
	count  int
	letter string
	vector []int
}

func readTable(name string) ([]entry, error) {
	f, err := tableFS.Open("tables/" + name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []entry
	count := -1
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 1 {
			if count, err = strconv.Atoi(fields[0]); err != nil {
				return nil, fmt.Errorf("%s: %q: %w", name, line, err)
			}
			continue
		}
		e := entry{count: count, letter: fields[0]}
		for _, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%s: %q: %w", name, line, err)
			}
			e.vector = append(e.vector, v)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

func mustBuild(double bool) *Lookup {
	l, err := build(double)
	if err != nil {
		panic(fmt.Sprintf("isotropic: %v", err))
	}
	return l
}

func build(double bool) (*Lookup, error) {
	inner, err := readTable("hensel.txt")
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(inner, func(a, b entry) int {
		if a.count != b.count {
			return a.count - b.count
		}
		return strings.Compare(a.letter, b.letter)
	})

	l := &Lookup{double: double, names: make(map[string]int)}
	type named struct {
		name, letters string
		block         int
		vector        []int
	}
	var candidates []named
	if !double {
		l.cells = slices.Clone(ring)
		l.group, err = symmetry.Parse(mooreGroup)
		if err != nil {
			return nil, err
		}
		l.token = singleTokenRe
		for _, e := range inner {
			letters := e.letter
			if letters == "x" {
				letters = ""
			}
			candidates = append(candidates, named{strconv.Itoa(e.count) + letters, letters, e.count, e.vector})
		}
	} else {
		l.suffix = "V2"
		l.cells = append(slices.Clone(ring), outerRing...)
		l.group, err = symmetry.Parse(vonNeumann2Group)
		if err != nil {
			return nil, err
		}
		l.token = doubleTokenRe
		outer, err := readTable("outer.txt")
		if err != nil {
			return nil, err
		}
		slices.SortFunc(outer, func(a, b entry) int { return strings.Compare(a.letter, b.letter) })
		// Outer letters vary slowest so the first name claiming a
		// configuration carries the smallest outer letter.
		for _, o := range outer {
			for _, e := range inner {
				letters := e.letter + o.letter
				vec := append(slices.Clone(e.vector), o.vector...)
				candidates = append(candidates, named{strconv.Itoa(e.count) + letters, letters, e.count, vec})
			}
		}
	}

	size := len(l.cells)
	owner := make([]int, 1<<size)
	for i := range owner {
		owner[i] = -1
	}
	var classes []class
	for _, c := range candidates {
		if len(c.vector) != size {
			return nil, fmt.Errorf("transition %s has %d cells, want %d", c.name, len(c.vector), size)
		}
		mask := toMask(c.vector)
		if id := owner[mask]; id >= 0 {
			if !double {
				return nil, fmt.Errorf("transition %s duplicates %s", c.name, classes[id].name)
			}
			l.names[c.name] = id
			continue
		}
		id := len(classes)
		orbit := l.group.Apply(c.vector)
		for _, img := range orbit {
			owner[toMask(img)] = id
		}
		classes = append(classes, class{
			name:    c.name,
			block:   c.block,
			letters: c.letters,
			count:   bits.OnesCount(uint(mask)),
			size:    len(orbit),
		})
		l.names[c.name] = id
	}
	for mask, id := range owner {
		if id < 0 {
			return nil, fmt.Errorf("configuration %0*b has no name", size, mask)
		}
	}

	// Renumber classes in name order.
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return strings.Compare(classes[a].name, classes[b].name) })
	renumber := make([]int, len(classes))
	l.classes = make([]class, len(classes))
	for to, from := range order {
		renumber[from] = to
		l.classes[to] = classes[from]
	}
	l.classOf = make([]int, len(owner))
	for mask, id := range owner {
		l.classOf[mask] = renumber[id]
	}
	for name, id := range l.names {
		l.names[name] = renumber[id]
	}
	return l, nil
}

func toMask(vec []int) int {
	mask := 0
	for i, v := range vec {
		if v != 0 {
			mask |= 1 << i
		}
	}
	return mask
}
