// Package candidate implements the bounded top-k candidate-position heap
// used by a paired-end consumer (spec.md §3): for one read, the k smallest-
// mismatch genome positions seen so far, with worst-of-the-kept dropped on
// overflow.
package candidate

import "container/heap"

// Position is one candidate alignment: a genome position, the strand it
// was found on, and its mismatch count. Grounded on
// _examples/original_source/src/walt/paired.hpp's CandidatePosition.
type Position struct {
	GenomePos uint32
	Strand    byte
	Mismatch  uint32
}

// maxHeap orders Positions so the worst (highest-mismatch) candidate is at
// the root, matching std::priority_queue<CandidatePosition> with
// operator< on Mismatch in the original.
type maxHeap []Position

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].Mismatch > h[j].Mismatch }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(Position)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Top is the bounded max-heap of retained candidates: Push keeps the size
// smallest-mismatch positions seen, evicting the current maximum on
// overflow (paired.hpp's TopCandidates).
type Top struct {
	h    maxHeap
	size int
}

// New returns a Top retaining at most size candidates. size must be > 0.
func New(size int) *Top {
	t := &Top{size: size}
	heap.Init(&t.h)
	return t
}

// Len reports how many candidates are currently retained.
func (t *Top) Len() int { return t.h.Len() }

// Empty reports whether no candidates are retained.
func (t *Top) Empty() bool { return t.h.Len() == 0 }

// Clear drops every retained candidate without changing the capacity.
func (t *Top) Clear() { t.h = t.h[:0] }

// Max returns the current worst-retained candidate. Callers must check
// Empty first.
func (t *Top) Max() Position { return t.h[0] }

// Push admits cand if there is spare capacity, or if cand strictly beats
// the current worst-retained candidate (which is then evicted). Ties at
// capacity are kept up to size, matching the original's "pop-max, push
// new" semantics which never compares a tie as strictly better.
func (t *Top) Push(cand Position) {
	if t.h.Len() < t.size {
		heap.Push(&t.h, cand)
		return
	}
	if cand.Mismatch < t.h[0].Mismatch {
		heap.Pop(&t.h)
		heap.Push(&t.h, cand)
	}
}

// Positions returns every retained candidate in no particular order.
func (t *Top) Positions() []Position {
	out := make([]Position, len(t.h))
	copy(out, t.h)
	return out
}
