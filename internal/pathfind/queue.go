package pathfind

import "github.com/specialistvlad/gridwalk/internal/grid"

// openItem is an entry of the open set.
type openItem struct {
	node  *grid.Node
	g     int
	h     int
	f     int
	seq   uint64 // discovery order, the last tie-breaker
	index int    // position in the heap, maintained by openQueue
}

// openQueue is a min-heap of open items implementing heap.Interface.
type openQueue []*openItem

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	item := x.(*openItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
