package flat

import (
	"fmt"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/vector"
)

// Index is a brute-force Euclidean index over positional rows.
type Index struct {
	vecs [][]float32
	dim  int
}

// New returns an empty flat index.
func New() *Index { return &Index{} }

// Kind implements index.Index.
func (i *Index) Kind() index.Kind { return index.KindFlat }

// Build loads the vectors; row i is vectors[i].
func (i *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		i.vecs, i.dim = nil, 0
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("flat: empty vector at row 0")
	}
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("flat: inconsistent vector dims %d vs %d at row %d", len(vectors[j]), dim, j)
		}
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	return nil
}

// Search returns the k nearest rows by Euclidean distance.
func (i *Index) Search(query []float32, k int) ([]float32, []int64, error) {
	if k <= 0 {
		return nil, nil, nil
	}
	if i.dim != 0 && len(query) != i.dim {
		return nil, nil, fmt.Errorf("flat: query dim %d != index dim %d", len(query), i.dim)
	}
	top := index.NewTopK(k)
	for row, vec := range i.vecs {
		top.Push(int64(row), vector.Euclidean(query, vec))
	}
	dists, rows := top.Results()
	return dists, rows, nil
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

// MarshalBinary stores the vectors in index.EncodeVectors format.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.dim, i.vecs)
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	_, vecs, err := index.DecodeVectors(data)
	if err != nil {
		return err
	}
	return i.Build(vecs)
}

var _ index.Index = (*Index)(nil)
