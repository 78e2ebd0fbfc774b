package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingRoundTrip(t *testing.T) {
	orig := []float32{0, 1.5, -2.25, 3.75}
	b, err := EncodeEmbedding(orig)
	require.NoError(t, err)
	assert.Len(t, b, 16)

	got, err := DecodeEmbeddingDim(b, len(orig))
	require.NoError(t, err)
	assert.Equal(t, orig, got)

	got, err = DecodeEmbedding(AppendEmbedding([]byte{}, orig))
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestDecodeEmbeddingRejectsBadLength(t *testing.T) {
	_, err := DecodeEmbedding([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrBlobLength)

	b, err := EncodeEmbedding([]float32{1, 2})
	require.NoError(t, err)
	_, err = DecodeEmbeddingDim(b, 3)
	require.ErrorIs(t, err, ErrBlobLength)
}

func TestEmbeddingEmpty(t *testing.T) {
	b, err := EncodeEmbedding(nil)
	require.NoError(t, err)
	assert.Empty(t, b)

	v, err := DecodeEmbedding(nil)
	require.NoError(t, err)
	assert.Empty(t, v)
}
