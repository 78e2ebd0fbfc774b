package recommend

import "math"

// Weights blends the three score components.
type Weights struct {
	Semantic   float64
	Quality    float64
	Popularity float64
}

// DefaultWeights returns 0.7 semantic, 0.2 quality, 0.1 popularity.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.7, Quality: 0.2, Popularity: 0.1}
}

// Score combines component scores.
func (w Weights) Score(semantic, quality, popularity float64) float64 {
	return w.Semantic*semantic + w.Quality*quality + w.Popularity*popularity
}

// SemanticScore maps an L2 distance to (0, 1]; closer is higher.
func SemanticScore(distance float64) float64 {
	if math.IsNaN(distance) || math.IsInf(distance, 1) {
		return 0
	}
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

// QualityScore maps a 0-10 vote average to [0, 1].
func QualityScore(voteAverage float64) float64 {
	return clamp01(voteAverage / 10)
}

// PopularityScore maps a raw popularity to [0, 1] on a log scale.
func PopularityScore(popularity float64) float64 {
	if math.IsNaN(popularity) {
		return 0
	}
	return clamp01(math.Log1p(math.Max(popularity, 0)) / 10)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
