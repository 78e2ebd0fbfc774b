package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/viant/cinematch/catalog/tmdb"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/metrics"
)

// SourceTMDB names the live feed strategy.
const SourceTMDB = "tmdb"

// PageFetcher returns one discover page. *tmdb.Client implements it.
type PageFetcher interface {
	Discover(ctx context.Context, page int) (*tmdb.DiscoverPage, error)
}

// TMDBFeed loads the top Pages discover pages, sorted by popularity.
type TMDBFeed struct {
	Client PageFetcher
	Pages  int
}

// NewTMDBFeed returns a feed reading pages pages through client.
func NewTMDBFeed(client PageFetcher, pages int) *TMDBFeed {
	if pages <= 0 {
		pages = 20
	}
	return &TMDBFeed{Client: client, Pages: pages}
}

// Name implements Source.
func (f *TMDBFeed) Name() string { return SourceTMDB }

// Load implements Source. A failing page is logged and skipped.
func (f *TMDBFeed) Load(ctx context.Context) ([]Movie, LoadStats, error) {
	log := logging.Component("catalog.tmdb")
	var stats LoadStats
	var movies []Movie
	seen := make(map[int64]struct{})

	for page := 1; page <= f.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		result, err := f.Client.Discover(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, stats, ctx.Err()
			}
			stats.FailedPages++
			metrics.BuildPageFailures.WithLabelValues(SourceTMDB).Inc()
			perr := &PartialFetchError{Source: SourceTMDB, Page: page, Err: err}
			log.Warn().Err(perr).Int("page", page).Msg("page skipped")
			continue
		}

		stats.Fetched += len(result.Results)
		for i := range result.Results {
			movie, ok := normalizeDiscover(&result.Results[i])
			if !ok {
				stats.Skipped++
				continue
			}
			if _, dup := seen[movie.ID]; dup {
				stats.Skipped++
				continue
			}
			seen[movie.ID] = struct{}{}
			movies = append(movies, movie)
		}
		log.Info().Int("page", page).Int("results", len(result.Results)).Msg("page fetched")

		if result.TotalPages > 0 && page >= result.TotalPages {
			break
		}
	}

	metrics.BuildRecords.WithLabelValues(SourceTMDB, "fetched").Add(float64(stats.Fetched))
	metrics.BuildRecords.WithLabelValues(SourceTMDB, "skipped").Add(float64(stats.Skipped))
	if len(movies) == 0 {
		return nil, stats, noRecords(SourceTMDB, stats)
	}
	return movies, stats, nil
}

// normalizeDiscover maps a discover result. Results without id or title are
// rejected.
func normalizeDiscover(r *tmdb.DiscoverMovie) (Movie, bool) {
	title := strings.TrimSpace(r.Title)
	if r.ID <= 0 || title == "" {
		return Movie{}, false
	}
	id := r.ID
	overview := deref(r.Overview)
	return Movie{
		ID:          r.ID,
		ExternalID:  &id,
		Title:       title,
		Overview:    overview,
		ReleaseDate: deref(r.ReleaseDate),
		VoteAverage: r.VoteAverage,
		VoteCount:   r.VoteCount,
		Popularity:  r.Popularity,
		Genres:      ResolveGenres(r.GenreIDs),
		PosterPath:  deref(r.PosterPath),
		TextContent: LiveFeedText(title, overview),
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsPartial reports whether err describes a single skipped page.
func IsPartial(err error) bool {
	var perr *PartialFetchError
	return errors.As(err, &perr)
}
