package index

import (
	"container/heap"
	"math"
	"sort"
)

// TopK keeps the k nearest (distance, row) pairs seen so far. Pairs are
// compared by distance, then by row, so results are deterministic.
type TopK struct {
	k     int
	items neighbors
}

type neighbor struct {
	row  int64
	dist float32
}

// neighbors is a max-heap: the worst kept neighbour sits at the root.
type neighbors []neighbor

func (h neighbors) Len() int            { return len(h) }
func (h neighbors) Less(i, j int) bool  { return worse(h[i], h[j]) }
func (h neighbors) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighbors) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func worse(a, b neighbor) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	return a.row > b.row
}

// NewTopK creates a collector for k results.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, items: make(neighbors, 0, k)}
}

// Push offers a candidate. NaN distances are ignored.
func (t *TopK) Push(row int64, dist float32) {
	if t.k == 0 || math.IsNaN(float64(dist)) {
		return
	}
	n := neighbor{row: row, dist: dist}
	if len(t.items) < t.k {
		heap.Push(&t.items, n)
		return
	}
	if worse(t.items[0], n) {
		t.items[0] = n
		heap.Fix(&t.items, 0)
	}
}

// Bound returns the distance a candidate must not exceed to be kept, or +Inf
// while fewer than k results are held.
func (t *TopK) Bound() float32 {
	if len(t.items) < t.k {
		return float32(math.Inf(1))
	}
	return t.items[0].dist
}

// Results returns exactly k slots ordered nearest first, padded with
// Sentinel rows at +Inf distance.
func (t *TopK) Results() ([]float32, []int64) {
	sorted := append(neighbors(nil), t.items...)
	sort.Slice(sorted, func(i, j int) bool { return worse(sorted[j], sorted[i]) })
	dists := make([]float32, t.k)
	rows := make([]int64, t.k)
	for i := 0; i < t.k; i++ {
		if i < len(sorted) {
			dists[i] = sorted[i].dist
			rows[i] = sorted[i].row
			continue
		}
		dists[i] = float32(math.Inf(1))
		rows[i] = Sentinel
	}
	return dists, rows
}
