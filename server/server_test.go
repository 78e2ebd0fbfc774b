package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/config"
	"github.com/viant/cinematch/embed"
	"github.com/viant/cinematch/index/flat"
	"github.com/viant/cinematch/recommend"
	"github.com/viant/cinematch/summary"
)

type stubSummarizer struct{ calls int }

func (s *stubSummarizer) Summarize(_ context.Context, query string, recs []recommend.Recommendation) summary.Summary {
	s.calls++
	return summary.Summary{Status: summary.StatusAvailable, Text: query + " fits"}
}

type brokenEncoder struct{ embed.Encoder }

func (brokenEncoder) Encode(context.Context, string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

func ptr(v int64) *int64 { return &v }

func testMovies() []catalog.Movie {
	return []catalog.Movie{
		{ID: 10, ExternalID: ptr(10), Title: "Alpha", Overview: "a detective solves a murder", VoteAverage: 9, Popularity: 10,
			Genres: []string{"Crime", "Mystery"}, PosterPath: "/a.jpg", TextContent: "Alpha: a detective solves a murder"},
		{ID: 20, Title: "Bravo", Overview: "aliens invade earth", VoteAverage: 5, Popularity: 1000,
			TextContent: "Bravo: aliens invade earth"},
		{ID: 30, Title: "Charlie", Overview: "a detective investigates a crime", VoteAverage: 8, Popularity: 5,
			TextContent: "Charlie: a detective investigates a crime"},
	}
}

func newTestServer(t *testing.T, enc embed.Encoder, sum summary.Summarizer) http.Handler {
	t.Helper()
	movies := testMovies()
	hash := embed.NewHashEncoder(384)
	texts := make([]string, len(movies))
	for i := range movies {
		texts[i] = movies[i].TextContent
	}
	vecs, err := hash.EncodeMany(context.Background(), texts)
	require.NoError(t, err)
	idx := flat.New()
	require.NoError(t, idx.Build(vecs))
	if enc == nil {
		enc = hash
	}
	rec, err := recommend.New(movies, idx, enc, recommend.DefaultOptions())
	require.NoError(t, err)
	return New(rec, sum, Info{BuildID: "build-1", Model: hash.Model(), Source: "tmdb", IndexKind: "flat"},
		config.Default().Server).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestRecommendEndpoint(t *testing.T) {
	sum := &stubSummarizer{}
	h := newTestServer(t, nil, sum)

	rr := get(t, h, "/api/recommend?q=detective+murder+mystery&k=2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "detective murder mystery", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Alpha", resp.Results[0].Title)
	assert.Equal(t, "Charlie", resp.Results[1].Title)
	assert.Equal(t, "Crime, Mystery", resp.Results[0].Genres)
	assert.Equal(t, "https://image.tmdb.org/t/p/w154/a.jpg", resp.Results[0].PosterURL)
	assert.Equal(t, posterPlaceholder, resp.Results[1].PosterURL)
	assert.Equal(t, 9.0, resp.Results[0].Rating)
	assert.Greater(t, resp.Results[0].Breakdown.Semantic, resp.Results[1].Breakdown.Semantic)
	assert.Equal(t, summary.Summary{Status: summary.StatusAvailable, Text: "detective murder mystery fits"}, resp.Summary)
	assert.Equal(t, 1, sum.calls)

	rr = get(t, h, "/api/recommend?q=detective&summary=false")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, summary.StatusDisabled, resp.Summary.Status)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 1, sum.calls)
}

func TestRecommendEndpointBadRequests(t *testing.T) {
	h := newTestServer(t, nil, nil)
	for _, target := range []string{
		"/api/recommend",
		"/api/recommend?q=%20%20",
		"/api/recommend?q=x&k=five",
		"/api/recommend?q=x&summary=maybe",
	} {
		rr := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestRecommendEndpointEncoderDown(t *testing.T) {
	h := newTestServer(t, brokenEncoder{Encoder: embed.NewHashEncoder(384)}, nil)
	rr := get(t, h, "/api/recommend?q=detective")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ENCODER_UNAVAILABLE", resp.Error.Code)
}

func TestSimilarEndpoint(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rr := get(t, h, "/api/movies/10/similar?k=1")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp similarResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Alpha", resp.Title)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Charlie", resp.Results[0].Title)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/movies/99/similar").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/movies/abc/similar").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rr := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	var health healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "build-1", health.BuildID)
	assert.Equal(t, 3, health.Count)

	rr = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cinematch_catalog_movies")
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w154/x.jpg", PosterURL("/x.jpg"))
	assert.Equal(t, posterPlaceholder, PosterURL(""))
}
