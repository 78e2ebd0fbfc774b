package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSemanticScoreMonotonic(t *testing.T) {
	prev := SemanticScore(0)
	assert.Equal(t, 1.0, prev)
	for d := 0.1; d < 50; d += 0.1 {
		s := SemanticScore(d)
		assert.Less(t, s, prev, "distance %.1f", d)
		prev = s
	}
	assert.Zero(t, SemanticScore(math.Inf(1)))
	assert.Zero(t, SemanticScore(math.NaN()))
}

func TestComponentClamping(t *testing.T) {
	assert.Equal(t, 0.9, QualityScore(9))
	assert.Equal(t, 1.0, QualityScore(12))
	assert.Equal(t, 0.0, QualityScore(-3))
	assert.Equal(t, 0.0, QualityScore(math.NaN()))

	assert.InDelta(t, math.Log(11)/10, PopularityScore(10), 1e-12)
	assert.Equal(t, 0.0, PopularityScore(-5))
	assert.Equal(t, 1.0, PopularityScore(1e12))
	assert.Equal(t, 0.0, PopularityScore(math.NaN()))
}

func TestScoreBounds(t *testing.T) {
	w := DefaultWeights()
	inputs := []float64{-1e9, -1, 0, 0.5, 1, 5, 10, 11, 1e3, 1e9, math.Inf(1), math.NaN()}
	for _, d := range inputs {
		for _, v := range inputs {
			for _, p := range inputs {
				s := w.Score(SemanticScore(d), QualityScore(v), PopularityScore(p))
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 1.0+1e-12)
			}
		}
	}
}

func TestScoreMonotonicInDistance(t *testing.T) {
	w := DefaultWeights()
	near := w.Score(SemanticScore(0.2), QualityScore(7), PopularityScore(100))
	far := w.Score(SemanticScore(0.9), QualityScore(7), PopularityScore(100))
	assert.Greater(t, near, far)
}
