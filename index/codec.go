package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// EncodeVectors stores: dim(uint32), n(uint32), then n*dim float32 values in
// row order. Row identity is positional, so no ids are written.
func EncodeVectors(dim int, vectors [][]float32) ([]byte, error) {
	out := make([]byte, 8, 8+4*dim*len(vectors))
	binary.LittleEndian.PutUint32(out[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(vectors)))
	var b [4]byte
	for row, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("index: row %d has dim %d, want %d", row, len(vec), dim)
		}
		for _, v := range vec {
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			out = append(out, b[:]...)
		}
	}
	return out, nil
}

// DecodeVectors restores vectors written by EncodeVectors.
func DecodeVectors(data []byte) (int, [][]float32, error) {
	if len(data) < 8 {
		return 0, nil, errors.New("index: invalid data")
	}
	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	n := int(binary.LittleEndian.Uint32(data[4:8]))
	if want := 8 + 4*dim*n; len(data) != want {
		return 0, nil, fmt.Errorf("index: truncated vectors: %d bytes, want %d", len(data), want)
	}
	off := 8
	vecs := make([][]float32, n)
	for row := 0; row < n; row++ {
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vecs[row] = vec
	}
	return dim, vecs, nil
}
