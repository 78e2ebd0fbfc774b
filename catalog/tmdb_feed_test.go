package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/cinematch/catalog/tmdb"
)

type fakeFetcher struct {
	pages map[int]*tmdb.DiscoverPage
	fail  map[int]error
	calls []int
}

func (f *fakeFetcher) Discover(_ context.Context, page int) (*tmdb.DiscoverPage, error) {
	f.calls = append(f.calls, page)
	if err := f.fail[page]; err != nil {
		return nil, err
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &tmdb.DiscoverPage{Page: page}, nil
}

func str(s string) *string { return &s }

func TestTMDBFeedSkipsFailedPage(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int]*tmdb.DiscoverPage{
			1: {Page: 1, TotalPages: 3, Results: []tmdb.DiscoverMovie{
				{ID: 603, Title: "The Matrix", Overview: str("A hacker learns the truth."), ReleaseDate: str("1999-03-30"),
					VoteAverage: 8.2, VoteCount: 24000, Popularity: 80.5, PosterPath: str("/m.jpg"), GenreIDs: []int{28, 878, 1}},
				{ID: 0, Title: "Broken"},
				{ID: 11, Title: "  "},
			}},
			3: {Page: 3, TotalPages: 3, Results: []tmdb.DiscoverMovie{
				{ID: 27205, Title: "Inception", Overview: nil, GenreIDs: []int{878}},
				{ID: 603, Title: "The Matrix"},
			}},
		},
		fail: map[int]error{2: errors.New("connection reset")},
	}

	movies, stats, err := NewTMDBFeed(fetcher, 5).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, fetcher.calls)
	assert.Equal(t, LoadStats{Fetched: 5, Skipped: 3, FailedPages: 1}, stats)
	require.Len(t, movies, 2)

	matrix := movies[0]
	assert.Equal(t, int64(603), matrix.ID)
	require.NotNil(t, matrix.ExternalID)
	assert.Equal(t, int64(603), *matrix.ExternalID)
	assert.Equal(t, []string{"Action", "Science Fiction"}, matrix.Genres)
	assert.Equal(t, "Action, Science Fiction", matrix.GenresString())
	assert.Equal(t, "The Matrix: A hacker learns the truth.", matrix.TextContent)
	assert.Equal(t, "1999", matrix.Year())

	inception := movies[1]
	assert.Equal(t, "Inception: ", inception.TextContent)
	assert.Equal(t, "", inception.PosterPath)
	assert.True(t, inception.HasText())
}

func TestTMDBFeedAllPagesFail(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[int]error{1: errors.New("x"), 2: errors.New("y")}}
	_, stats, err := NewTMDBFeed(fetcher, 2).Load(context.Background())
	require.ErrorIs(t, err, ErrNoRecords)
	assert.Equal(t, 2, stats.FailedPages)
}

func TestTMDBFeedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewTMDBFeed(&fakeFetcher{}, 3).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPartialFetchError(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&PartialFetchError{Source: SourceTMDB, Page: 4, Err: cause})
	assert.True(t, IsPartial(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "page 4")
}
