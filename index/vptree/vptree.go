package vptree

import (
	"fmt"
	"sort"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/vector"
)

// slack absorbs float32 rounding in the triangle inequality so pruning stays
// exact.
const slack = 1e-4

// Index is a vantage-point tree over positional rows.
type Index struct {
	vecs [][]float32
	dim  int
	root *node
}

type node struct {
	row     int     // vantage point
	mu      float32 // median distance from the vantage point
	inside  *node   // distance <= mu
	outside *node   // distance >= mu
}

// New returns an empty tree index.
func New() *Index { return &Index{} }

// Kind implements index.Index.
func (i *Index) Kind() index.Kind { return index.KindVPTree }

// Build constructs the tree. Vantage points are chosen deterministically so
// the same vectors always yield the same tree.
func (i *Index) Build(vectors [][]float32) error {
	i.vecs, i.dim, i.root = nil, 0, nil
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("vptree: empty vector at row 0")
	}
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("vptree: inconsistent vector dims %d vs %d at row %d", len(vectors[j]), dim, j)
		}
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	rows := make([]int, len(vectors))
	for k := range rows {
		rows[k] = k
	}
	i.root = i.build(rows)
	return nil
}

func (i *Index) build(rows []int) *node {
	if len(rows) == 0 {
		return nil
	}
	// last row is the vantage point to avoid extra randomness
	vp := rows[len(rows)-1]
	rest := rows[:len(rows)-1]
	n := &node{row: vp}
	if len(rest) == 0 {
		return n
	}
	dists := make([]float32, len(rest))
	for k, r := range rest {
		dists[k] = vector.Euclidean(i.vecs[vp], i.vecs[r])
	}
	order := make([]int, len(rest))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool {
		if dists[order[a]] != dists[order[b]] {
			return dists[order[a]] < dists[order[b]]
		}
		return rest[order[a]] < rest[order[b]]
	})
	mid := len(order) / 2
	n.mu = dists[order[mid]]
	inside := make([]int, 0, mid+1)
	outside := make([]int, 0, len(order)-mid-1)
	for rank, k := range order {
		if rank <= mid {
			inside = append(inside, rest[k])
		} else {
			outside = append(outside, rest[k])
		}
	}
	n.inside = i.build(inside)
	n.outside = i.build(outside)
	return n
}

// Search returns the k nearest rows by Euclidean distance.
func (i *Index) Search(query []float32, k int) ([]float32, []int64, error) {
	if k <= 0 {
		return nil, nil, nil
	}
	if i.dim != 0 && len(query) != i.dim {
		return nil, nil, fmt.Errorf("vptree: query dim %d != index dim %d", len(query), i.dim)
	}
	top := index.NewTopK(k)
	i.search(i.root, query, top)
	dists, rows := top.Results()
	return dists, rows, nil
}

func (i *Index) search(n *node, query []float32, top *index.TopK) {
	if n == nil {
		return
	}
	d := vector.Euclidean(query, i.vecs[n.row])
	top.Push(int64(n.row), d)
	if n.inside == nil && n.outside == nil {
		return
	}
	// inside points satisfy dist(q,x) >= d-mu, outside points dist(q,x) >= mu-d
	if d <= n.mu {
		if d-n.mu <= top.Bound()+slack {
			i.search(n.inside, query, top)
		}
		if n.mu-d <= top.Bound()+slack {
			i.search(n.outside, query, top)
		}
		return
	}
	if n.mu-d <= top.Bound()+slack {
		i.search(n.outside, query, top)
	}
	if d-n.mu <= top.Bound()+slack {
		i.search(n.inside, query, top)
	}
}

// Len returns the number of rows.
func (i *Index) Len() int { return len(i.vecs) }

// Dimension returns the vector dimension.
func (i *Index) Dimension() int { return i.dim }

// Vector returns the stored vector at row.
func (i *Index) Vector(row int64) []float32 {
	if row < 0 || row >= int64(len(i.vecs)) {
		return nil
	}
	return i.vecs[row]
}

// MarshalBinary uses the flat vector encoding for persistence.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.dim, i.vecs)
}

// UnmarshalBinary decodes the vectors and rebuilds the tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	_, vecs, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	return i.Build(vecs)
}

var _ index.Index = (*Index)(nil)
