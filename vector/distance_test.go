package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL2Distance(t *testing.T) {
	d, err := L2Distance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)

	_, err = L2Distance([]float32{0, 0}, []float32{1})
	require.Error(t, err)
}

func TestEuclideanMatchesL2Distance(t *testing.T) {
	a := []float32{0.25, -1.5, 3}
	b := []float32{1, 0.5, -2}
	want, err := L2Distance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, want, float64(Euclidean(a, b)), 1e-5)
	assert.Zero(t, Euclidean(a, a))
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
	assert.InDelta(t, 1, float64(Magnitude(v)), 1e-6)

	zero := []float32{0, 0}
	Normalize(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}
