package rules

import (
	"container/heap"

	"casearch/internal/core"
)

// ReadingOrder is a total order on cells used for in-place updates.
type ReadingOrder interface {
	// Name is the specifier, without the colon.
	Name() string
	Less(a, b core.Coordinate) bool
}

// Orthogonal reads rows top to bottom, each row left to right.
type Orthogonal struct{}

// Name returns "NO".
func (Orthogonal) Name() string { return "NO" }

// Less orders by y, then x.
func (Orthogonal) Less(a, b core.Coordinate) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

var orders = map[string]ReadingOrder{
	"NO": Orthogonal{},
}

type cellQueue struct {
	cells []core.Coordinate
	order ReadingOrder
}

func (q *cellQueue) Len() int           { return len(q.cells) }
func (q *cellQueue) Less(i, j int) bool { return q.order.Less(q.cells[i], q.cells[j]) }
func (q *cellQueue) Swap(i, j int)      { q.cells[i], q.cells[j] = q.cells[j], q.cells[i] }
func (q *cellQueue) Push(x any)         { q.cells = append(q.cells, x.(core.Coordinate)) }
func (q *cellQueue) Pop() any {
	n := len(q.cells)
	c := q.cells[n-1]
	q.cells = q.cells[:n-1]
	return c
}

func (q *cellQueue) push(c core.Coordinate) { heap.Push(q, c) }
func (q *cellQueue) pop() core.Coordinate   { return heap.Pop(q).(core.Coordinate) }
