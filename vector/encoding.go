package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBlobLength reports an embedding BLOB whose size does not fit the
// expected float32 layout.
var ErrBlobLength = errors.New("vector: bad embedding blob length")

// AppendEmbedding appends vec to dst as little-endian float32 values.
func AppendEmbedding(dst []byte, vec []float32) []byte {
	for _, v := range vec {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// EncodeEmbedding returns the BLOB form of vec stored in the movies table
// and passed to vec_l2. An empty vector encodes to nil.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	return AppendEmbedding(make([]byte, 0, 4*len(vec)), vec), nil
}

// DecodeEmbedding reverses EncodeEmbedding. The dimension is len(b)/4.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlobLength, len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// DecodeEmbeddingDim decodes b and requires exactly dim values.
func DecodeEmbeddingDim(b []byte, dim int) ([]float32, error) {
	if len(b) != 4*dim {
		return nil, fmt.Errorf("%w: %d bytes, dimension %d needs %d", ErrBlobLength, len(b), dim, 4*dim)
	}
	return DecodeEmbedding(b)
}
