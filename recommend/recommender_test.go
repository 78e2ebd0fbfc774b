package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/embed"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/index/flat"
)

// spyIndex records the k of every search.
type spyIndex struct {
	index.Index
	mu    sync.Mutex
	asked []int
}

func (s *spyIndex) Search(q []float32, k int) ([]float32, []int64, error) {
	s.mu.Lock()
	s.asked = append(s.asked, k)
	s.mu.Unlock()
	return s.Index.Search(q, k)
}

type failingEncoder struct {
	embed.Encoder
	err error
}

func (f failingEncoder) Encode(context.Context, string) ([]float32, error) { return nil, f.err }

func buildRecommender(t *testing.T, movies []catalog.Movie, opts Options) (*Recommender, *spyIndex) {
	t.Helper()
	enc := embed.NewHashEncoder(384)
	texts := make([]string, len(movies))
	for i := range movies {
		texts[i] = movies[i].TextContent
	}
	vecs, err := enc.EncodeMany(context.Background(), texts)
	require.NoError(t, err)
	idx := flat.New()
	require.NoError(t, idx.Build(vecs))
	spy := &spyIndex{Index: idx}
	r, err := New(movies, spy, enc, opts)
	require.NoError(t, err)
	return r, spy
}

func exampleCatalog() []catalog.Movie {
	mk := func(id int64, title, overview string, vote, pop float64) catalog.Movie {
		return catalog.Movie{ID: id, Title: title, Overview: overview, VoteAverage: vote, Popularity: pop,
			TextContent: catalog.LiveFeedText(title, overview)}
	}
	return []catalog.Movie{
		mk(1, "Alpha", "a detective solves a murder", 9.0, 10),
		mk(2, "Bravo", "aliens invade earth", 5.0, 1000),
		mk(3, "Charlie", "a detective investigates a crime", 8.0, 5),
	}
}

func TestRecommendEndToEndExample(t *testing.T) {
	r, _ := buildRecommender(t, exampleCatalog(), DefaultOptions())

	recs, err := r.Recommend(context.Background(), "detective murder mystery", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Alpha", recs[0].Movie.Title)
	assert.Equal(t, "Charlie", recs[1].Movie.Title)
	assert.InDelta(t, 0.569, recs[0].Score, 0.002)
	assert.InDelta(t, 0.497, recs[1].Score, 0.002)

	all, err := r.Recommend(context.Background(), "detective murder mystery", 3)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bravo", all[2].Movie.Title)
	assert.InDelta(t, 0.459, all[2].Score, 0.002)
	assert.Less(t, all[0].Distance, all[1].Distance)
}

func TestRecommendDeterministic(t *testing.T) {
	r, _ := buildRecommender(t, exampleCatalog(), DefaultOptions())
	ctx := context.Background()
	first, err := r.Recommend(ctx, "space opera with robots", 5)
	require.NoError(t, err)
	second, err := r.Recommend(ctx, "space opera with robots", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommendFiltersSentinels(t *testing.T) {
	r, spy := buildRecommender(t, exampleCatalog(), DefaultOptions())
	recs, err := r.Recommend(context.Background(), "detective", 5)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	for _, rec := range recs {
		assert.NotEqual(t, index.Sentinel, rec.Row)
	}
	assert.Equal(t, []int{50}, spy.asked)
}

func TestRecommendWidensThenNarrows(t *testing.T) {
	var movies []catalog.Movie
	words := []string{"heist", "crew", "vault", "robbery", "casino", "night", "city", "police", "chase", "bank"}
	for i := 0; i < 120; i++ {
		text := words[i%len(words)] + " " + words[(i/len(words))%len(words)] + " story"
		movies = append(movies, catalog.Movie{ID: int64(i + 1), Title: text, VoteAverage: float64(i % 11),
			Popularity: float64(i * 3), TextContent: text})
	}
	r, spy := buildRecommender(t, movies, DefaultOptions())

	recs, err := r.Recommend(context.Background(), "casino heist", 5)
	require.NoError(t, err)
	require.Len(t, spy.asked, 1)
	assert.LessOrEqual(t, spy.asked[0], 50)
	assert.LessOrEqual(t, len(recs), 5)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
}

func TestRecommendTopKDefaultsAndCap(t *testing.T) {
	r, spy := buildRecommender(t, exampleCatalog(), Options{MaxTopK: 2})
	_, err := r.Recommend(context.Background(), "detective", 0)
	require.NoError(t, err)
	_, err = r.Recommend(context.Background(), "detective", 99)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 20}, spy.asked)
	assert.Equal(t, 2, r.TopK(-1))
}

func TestRecommendEmptyQuery(t *testing.T) {
	r, spy := buildRecommender(t, exampleCatalog(), DefaultOptions())
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := r.Recommend(context.Background(), q, 5)
		require.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Empty(t, spy.asked)
}

func TestRecommendEncodingError(t *testing.T) {
	movies := exampleCatalog()
	base, _ := buildRecommender(t, movies, DefaultOptions())
	cause := errors.New("model server down")
	r, err := New(movies, base.idx, failingEncoder{Encoder: base.encoder, err: cause}, DefaultOptions())
	require.NoError(t, err)

	_, err = r.Recommend(context.Background(), "detective", 5)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.True(t, encErr.Temporary())
	assert.ErrorIs(t, err, cause)

	r, err = New(movies, base.idx, failingEncoder{Encoder: base.encoder, err: context.Canceled}, DefaultOptions())
	require.NoError(t, err)
	_, err = r.Recommend(context.Background(), "detective", 5)
	require.ErrorAs(t, err, &encErr)
	assert.False(t, encErr.Temporary())
}

func TestSimilar(t *testing.T) {
	r, _ := buildRecommender(t, exampleCatalog(), DefaultOptions())
	recs, err := r.Similar(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Charlie", recs[0].Movie.Title)
	for _, rec := range recs {
		assert.NotEqual(t, int64(1), rec.Movie.ID)
	}

	_, err = r.Similar(context.Background(), 404, 5)
	require.ErrorIs(t, err, ErrUnknownMovie)
}

func TestNewRejectsMismatchedInputs(t *testing.T) {
	idx := flat.New()
	require.NoError(t, idx.Build([][]float32{{1, 0}}))
	_, err := New(nil, idx, embed.NewHashEncoder(2), DefaultOptions())
	require.Error(t, err)
	_, err = New(exampleCatalog()[:1], idx, embed.NewHashEncoder(8), DefaultOptions())
	require.Error(t, err)
}

func TestNewCopiesCatalog(t *testing.T) {
	movies := exampleCatalog()
	ext := int64(77)
	movies[0].ExternalID = &ext
	movies[0].Genres = []string{"Mystery"}
	r, _ := buildRecommender(t, movies, DefaultOptions())

	movies[0].Title = "Changed"
	movies[0].Genres[0] = "Changed"
	ext = 1
	movies[1] = movies[2]

	m, ok := r.Movie(1)
	require.True(t, ok)
	assert.Equal(t, "Alpha", m.Title)
	assert.Equal(t, []string{"Mystery"}, m.Genres)
	require.NotNil(t, m.ExternalID)
	assert.Equal(t, int64(77), *m.ExternalID)
	assert.Equal(t, 3, r.Len())
	bravo, ok := r.Movie(2)
	require.True(t, ok)
	assert.Equal(t, "Bravo", bravo.Title)

	recs, err := r.Recommend(context.Background(), "detective murder mystery", 1)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", recs[0].Movie.Title)
}

func TestRecommendConcurrent(t *testing.T) {
	r, _ := buildRecommender(t, exampleCatalog(), DefaultOptions())
	want, err := r.Recommend(context.Background(), "detective crime", 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Recommend(context.Background(), "detective crime", 3)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
