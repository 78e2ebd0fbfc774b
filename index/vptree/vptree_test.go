package vptree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/index/flat"
)

func randomVectors(rng *rand.Rand, n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		out[i] = v
	}
	return out
}

func TestSearchMatchesFlat(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vecs := randomVectors(rng, 500, 16)

	tree := New()
	require.NoError(t, tree.Build(vecs))
	brute := flat.New()
	require.NoError(t, brute.Build(vecs))

	for q := 0; q < 25; q++ {
		query := randomVectors(rng, 1, 16)[0]
		for _, k := range []int{1, 10, 50} {
			wantD, wantR, _ := brute.Search(query, k)
			gotD, gotR, err := tree.Search(query, k)
			require.NoError(t, err)
			require.Equal(t, wantR, gotR, "query %d k=%d", q, k)
			require.Equal(t, wantD, gotD, "query %d k=%d", q, k)
		}
	}
}

func TestSearchDuplicates(t *testing.T) {
	tree := New()
	require.NoError(t, tree.Build([][]float32{{1, 1}, {1, 1}, {1, 1}, {0, 0}, {1, 1}}))
	_, rows, err := tree.Search([]float32{1, 1}, 6)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 4, 3, index.Sentinel}, rows)
}

func TestMarshalUnmarshalRebuildsTree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	vecs := randomVectors(rng, 64, 8)
	src := New()
	require.NoError(t, src.Build(vecs))
	data, err := src.MarshalBinary()
	require.NoError(t, err)
	dst := New()
	require.NoError(t, dst.UnmarshalBinary(data))

	q := vecs[5]
	d1, r1, _ := src.Search(q, 5)
	d2, r2, _ := dst.Search(q, 5)
	assert.Equal(t, r1, r2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, int64(5), r1[0])
	assert.Zero(t, d1[0])
}
