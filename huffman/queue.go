package huffman

import "container/heap"

// Queue holds tree nodes ordered by ascending weight. Among nodes of equal
// weight the one pushed most recently is popped first.
type Queue struct {
	h   nodeHeap
	seq uint64
}

type queued struct {
	node *Node
	seq  uint64
}

type nodeHeap []queued

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	return before(h[i], h[j])
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(queued))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = queued{}
	*h = old[:n-1]
	return x
}

// before reports whether a is dequeued ahead of b.
func before(a, b queued) bool {
	if a.node.Weight != b.node.Weight {
		return a.node.Weight < b.node.Weight
	}
	return a.seq > b.seq
}

// NewQueue returns a queue holding nodes, pushed in the order given.
func NewQueue(nodes ...*Node) *Queue {
	q := &Queue{}
	for _, n := range nodes {
		q.Push(n)
	}
	return q
}

func (q *Queue) Len() int { return q.h.Len() }

func (q *Queue) Push(n *Node) {
	q.seq++
	heap.Push(&q.h, queued{node: n, seq: q.seq})
}

// Pop removes and returns the front node. Popping an empty queue is a
// programming error and panics.
func (q *Queue) Pop() *Node {
	if q.h.Len() == 0 {
		panic("huffman: pop from empty queue")
	}
	return heap.Pop(&q.h).(queued).node
}

// Sorted returns the queued nodes in the order Pop would return them,
// leaving the queue untouched.
func (q *Queue) Sorted() []*Node {
	h := make(nodeHeap, len(q.h))
	copy(h, q.h)

	out := make([]*Node, 0, len(h))
	for h.Len() > 0 {
		out = append(out, heap.Pop(&h).(queued).node)
	}
	return out
}
