package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/metrics"
)

// SourceMovieLens names the static dataset strategy.
const SourceMovieLens = "movielens"

const noGenres = "(no genres listed)"

var titleYear = regexp.MustCompile(`\((\d{4})\)\s*$`)

// MovieLensDataset reads an extracted ml-latest-small style directory:
// movies.csv and links.csv are required, ratings.csv is optional.
type MovieLensDataset struct {
	Dir string
}

// NewMovieLensDataset returns a dataset rooted at dir.
func NewMovieLensDataset(dir string) *MovieLensDataset {
	return &MovieLensDataset{Dir: dir}
}

// Name implements Source.
func (d *MovieLensDataset) Name() string { return SourceMovieLens }

type ratingAgg struct {
	sum   float64
	count int64
}

// Load implements Source.
func (d *MovieLensDataset) Load(ctx context.Context) ([]Movie, LoadStats, error) {
	log := logging.Component("catalog.movielens")
	var stats LoadStats

	links, err := d.readLinks()
	if err != nil {
		return nil, stats, err
	}
	ratings, err := d.readRatings(ctx, &stats)
	if err != nil {
		return nil, stats, err
	}
	if ratings == nil {
		log.Info().Msg("ratings.csv not found, quality and popularity default to zero")
	}

	var movies []Movie
	seen := make(map[int64]struct{})
	err = d.scan("movies.csv", 3, func(rec []string) {
		stats.Fetched++
		movie, ok := normalizeDatasetRow(rec)
		if !ok {
			stats.Skipped++
			return
		}
		if _, dup := seen[movie.ID]; dup {
			stats.Skipped++
			return
		}
		seen[movie.ID] = struct{}{}
		movie.ExternalID = links[movie.ID]
		if agg, ok := ratings[movie.ID]; ok && agg.count > 0 {
			movie.VoteAverage = 2 * agg.sum / float64(agg.count)
			movie.VoteCount = agg.count
			movie.Popularity = float64(agg.count)
		}
		movies = append(movies, movie)
	})
	if err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	metrics.BuildRecords.WithLabelValues(SourceMovieLens, "fetched").Add(float64(stats.Fetched))
	metrics.BuildRecords.WithLabelValues(SourceMovieLens, "skipped").Add(float64(stats.Skipped))
	log.Info().Int("movies", len(movies)).Int("skipped", stats.Skipped).Int("linked", len(links)).Msg("dataset loaded")
	if len(movies) == 0 {
		return nil, stats, noRecords(SourceMovieLens, stats)
	}
	return movies, stats, nil
}

// normalizeDatasetRow maps movieId,title,genres.
func normalizeDatasetRow(rec []string) (Movie, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	title := strings.TrimSpace(rec[1])
	if err != nil || id <= 0 || title == "" {
		return Movie{}, false
	}
	rawGenres := strings.TrimSpace(rec[2])
	movie := Movie{
		ID:          id,
		Title:       title,
		Genres:      splitGenres(rawGenres),
		TextContent: DatasetText(title, rawGenres),
	}
	if m := titleYear.FindStringSubmatch(title); m != nil {
		movie.ReleaseDate = m[1]
	}
	return movie, true
}

func splitGenres(raw string) []string {
	if raw == "" || raw == noGenres {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readLinks maps movieId to tmdbId. Rows with an empty or invalid tmdbId
// leave the movie unmapped.
func (d *MovieLensDataset) readLinks() (map[int64]*int64, error) {
	links := make(map[int64]*int64)
	err := d.scan("links.csv", 3, func(rec []string) {
		movieID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return
		}
		tmdbID, err := strconv.ParseInt(strings.TrimSpace(rec[2]), 10, 64)
		if err != nil || tmdbID <= 0 {
			return
		}
		links[movieID] = &tmdbID
	})
	return links, err
}

// readRatings aggregates ratings.csv. A missing file yields nil.
func (d *MovieLensDataset) readRatings(ctx context.Context, stats *LoadStats) (map[int64]*ratingAgg, error) {
	if _, err := os.Stat(filepath.Join(d.Dir, "ratings.csv")); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	ratings := make(map[int64]*ratingAgg)
	var bad int
	err := d.scan("ratings.csv", 3, func(rec []string) {
		movieID, err1 := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		rating, err2 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err1 != nil || err2 != nil {
			bad++
			return
		}
		agg := ratings[movieID]
		if agg == nil {
			agg = &ratingAgg{}
			ratings[movieID] = agg
		}
		agg.sum += rating
		agg.count++
	})
	if err != nil {
		return nil, err
	}
	if bad > 0 {
		log := logging.Component("catalog.movielens")
		log.Warn().Int("rows", bad).Msg("malformed ratings ignored")
	}
	return ratings, ctx.Err()
}

// scan streams a headed CSV file, calling fn for every record with at least
// minFields columns. Short records are ignored.
func (d *MovieLensDataset) scan(name string, minFields int, fn func([]string)) error {
	path := filepath.Join(d.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("catalog: read %s header: %w", path, err)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		if len(rec) < minFields {
			continue
		}
		fn(rec)
	}
}
