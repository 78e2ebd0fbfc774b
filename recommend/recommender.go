// Package recommend ranks catalog movies for a free-text query with a hybrid
// score: semantic similarity from the vector index blended with quality and
// popularity.
package recommend

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/config"
	"github.com/viant/cinematch/embed"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/metrics"
)

// Recommendation is one ranked movie with its score breakdown.
type Recommendation struct {
	Movie           catalog.Movie
	Row             int64
	Distance        float64
	SemanticScore   float64
	QualityScore    float64
	PopularityScore float64
	Score           float64
}

// Options tunes ranking.
type Options struct {
	DefaultTopK         int
	MaxTopK             int
	CandidateMultiplier int
	Weights             Weights
}

// DefaultOptions returns top 5, at most 50, a 10x candidate pool and the
// default weights.
func DefaultOptions() Options {
	return Options{DefaultTopK: 5, MaxTopK: 50, CandidateMultiplier: 10, Weights: DefaultWeights()}
}

// OptionsFrom maps configuration onto Options.
func OptionsFrom(cfg config.RecommendConfig) Options {
	return Options{
		DefaultTopK:         cfg.DefaultTopK,
		MaxTopK:             cfg.MaxTopK,
		CandidateMultiplier: cfg.CandidateMultiplier,
		Weights: Weights{
			Semantic:   cfg.SemanticWeight,
			Quality:    cfg.QualityWeight,
			Popularity: cfg.PopularityWeight,
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultTopK <= 0 {
		o.DefaultTopK = d.DefaultTopK
	}
	if o.MaxTopK <= 0 {
		o.MaxTopK = d.MaxTopK
	}
	if o.CandidateMultiplier <= 0 {
		o.CandidateMultiplier = d.CandidateMultiplier
	}
	if o.Weights == (Weights{}) {
		o.Weights = d.Weights
	}
	return o
}

// Recommender is an immutable serving context built once from loaded
// artifacts. It is safe for concurrent use.
type Recommender struct {
	movies  []catalog.Movie
	idx     index.Index
	encoder embed.Encoder
	opts    Options
	rows    map[int64]int64
}

// New validates that movies, idx and encoder agree and returns a
// Recommender.
func New(movies []catalog.Movie, idx index.Index, encoder embed.Encoder, opts Options) (*Recommender, error) {
	if idx == nil || encoder == nil {
		return nil, fmt.Errorf("recommend: index and encoder are required")
	}
	if len(movies) != idx.Len() {
		return nil, fmt.Errorf("recommend: %d movies but index holds %d rows", len(movies), idx.Len())
	}
	if idx.Len() > 0 && idx.Dimension() != encoder.Dimension() {
		return nil, fmt.Errorf("recommend: index dimension %d, encoder dimension %d", idx.Dimension(), encoder.Dimension())
	}
	movies = cloneMovies(movies)
	rows := make(map[int64]int64, len(movies))
	for i := range movies {
		if _, ok := rows[movies[i].ID]; !ok {
			rows[movies[i].ID] = int64(i)
		}
	}
	metrics.CatalogSize.Set(float64(len(movies)))
	return &Recommender{movies: movies, idx: idx, encoder: encoder, opts: opts.withDefaults(), rows: rows}, nil
}

// cloneMovies copies movies so later changes by the caller are not seen.
func cloneMovies(movies []catalog.Movie) []catalog.Movie {
	out := slices.Clone(movies)
	for i := range out {
		out[i].Genres = slices.Clone(out[i].Genres)
		if id := out[i].ExternalID; id != nil {
			v := *id
			out[i].ExternalID = &v
		}
	}
	return out
}

// Len returns the catalog size.
func (r *Recommender) Len() int { return len(r.movies) }

// Movie looks up a movie by catalog id.
func (r *Recommender) Movie(id int64) (catalog.Movie, bool) {
	row, ok := r.rows[id]
	if !ok {
		return catalog.Movie{}, false
	}
	return r.movies[row], true
}

// TopK normalizes a requested result count.
func (r *Recommender) TopK(k int) int {
	if k <= 0 {
		k = r.opts.DefaultTopK
	}
	return min(k, r.opts.MaxTopK)
}

// Recommend returns up to topK movies for query, best first. topK <= 0
// selects the default.
func (r *Recommender) Recommend(ctx context.Context, query string, topK int) ([]Recommendation, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		metrics.RecommendRequests.WithLabelValues("empty_query").Inc()
		return nil, ErrEmptyQuery
	}
	topK = r.TopK(topK)

	vec, err := r.encoder.Encode(ctx, query)
	metrics.RecommendDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
	if err == nil && len(vec) != r.encoder.Dimension() {
		err = &embed.DimensionError{Want: r.encoder.Dimension(), Got: len(vec)}
	}
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("encode_error").Inc()
		return nil, &EncodingError{Err: err}
	}

	recs, err := r.rank(vec, topK, index.Sentinel)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RecommendRequests.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	return recs, nil
}

// Similar ranks movies against the stored vector of movie id, excluding the
// movie itself.
func (r *Recommender) Similar(ctx context.Context, id int64, topK int) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMovie, id)
	}
	return r.rank(r.idx.Vector(row), r.TopK(topK), row)
}

// rank widens to a candidate pool, scores it and narrows to topK.
func (r *Recommender) rank(vec []float32, topK int, exclude int64) ([]Recommendation, error) {
	pool := topK * r.opts.CandidateMultiplier
	if exclude != index.Sentinel {
		pool++
	}

	searchStart := time.Now()
	dists, rows, err := r.idx.Search(vec, pool)
	metrics.RecommendDuration.WithLabelValues("search").Observe(time.Since(searchStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("recommend: search: %w", err)
	}

	scoreStart := time.Now()
	recs := make([]Recommendation, 0, len(rows))
	for i, row := range rows {
		if row == index.Sentinel || row < 0 || row >= int64(len(r.movies)) || row == exclude {
			continue
		}
		m := r.movies[row]
		d := float64(dists[i])
		sem := SemanticScore(d)
		qual := QualityScore(m.VoteAverage)
		pop := PopularityScore(m.Popularity)
		recs = append(recs, Recommendation{
			Movie:           m,
			Row:             row,
			Distance:        d,
			SemanticScore:   sem,
			QualityScore:    qual,
			PopularityScore: pop,
			Score:           r.opts.Weights.Score(sem, qual, pop),
		})
	}
	metrics.CandidatePoolSize.Observe(float64(len(recs)))

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > topK {
		recs = recs[:topK]
	}
	metrics.RecommendDuration.WithLabelValues("score").Observe(time.Since(scoreStart).Seconds())
	return recs, nil
}
