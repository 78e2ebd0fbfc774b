// Package builder runs the offline pipeline that turns a catalog source into
// serving artifacts: load, filter, embed, index, save.
package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/cinematch/artifact"
	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/embed"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/metrics"
)

// ErrNoRecords aborts a build whose source produced nothing to index.
var ErrNoRecords = catalog.ErrNoRecords

const defaultBatchSize = 64

// Builder holds one build's inputs.
type Builder struct {
	Source    catalog.Source
	Encoder   embed.Encoder
	IndexKind index.Kind
	BatchSize int
	OutputDir string
}

// Report summarizes a finished build.
type Report struct {
	BuildID     string
	Source      string
	Model       string
	IndexKind   string
	Fetched     int
	Skipped     int
	FailedPages int
	EmptyText   int
	Indexed     int
	Dimension   int
	Checksum    string
	Duration    time.Duration
}

// Run executes the pipeline. Page failures are tolerated; encoder and write
// failures abort the build and leave existing artifacts untouched.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	log := logging.Component("builder")
	if b.Source == nil || b.Encoder == nil {
		return nil, fmt.Errorf("builder: source and encoder are required")
	}
	kind := b.IndexKind
	if kind == "" {
		kind = index.KindFlat
	}
	idx, err := artifact.NewIndex(kind)
	if err != nil {
		return nil, err
	}
	source := b.Source.Name()
	report := &Report{Source: source, Model: b.Encoder.Model(), IndexKind: string(kind)}

	log.Info().Str("source", source).Str("model", report.Model).Str("kind", report.IndexKind).Msg("build started")
	movies, stats, err := b.Source.Load(ctx)
	report.Fetched, report.Skipped, report.FailedPages = stats.Fetched, stats.Skipped, stats.FailedPages
	if err != nil {
		return report, fmt.Errorf("builder: load %s: %w", source, err)
	}
	log.Info().Int("fetched", stats.Fetched).Int("skipped", stats.Skipped).
		Int("failed_pages", stats.FailedPages).Int("movies", len(movies)).Msg("catalog loaded")

	kept := movies[:0]
	for _, m := range movies {
		if m.HasText() {
			kept = append(kept, m)
		}
	}
	report.EmptyText = len(movies) - len(kept)
	movies = kept
	if report.EmptyText > 0 {
		metrics.BuildRecords.WithLabelValues(source, "empty_text").Add(float64(report.EmptyText))
		log.Warn().Int("dropped", report.EmptyText).Msg("movies without text content dropped")
	}
	if len(movies) == 0 {
		return report, fmt.Errorf("builder: %w", ErrNoRecords)
	}

	embeddings, err := b.encode(ctx, movies)
	if err != nil {
		return report, err
	}
	if err := idx.Build(embeddings); err != nil {
		return report, fmt.Errorf("builder: build index: %w", err)
	}

	manifest, err := artifact.Save(ctx, b.OutputDir, artifact.Bundle{
		Movies:     movies,
		Embeddings: embeddings,
		Index:      idx,
		Source:     source,
		Model:      b.Encoder.Model(),
	})
	if err != nil {
		return report, fmt.Errorf("builder: save artifacts: %w", err)
	}

	report.BuildID = manifest.BuildID
	report.Indexed = manifest.Count
	report.Dimension = manifest.Dimension
	report.Checksum = manifest.IndexChecksum
	report.Duration = time.Since(start)
	metrics.BuildDuration.Observe(report.Duration.Seconds())
	log.Info().Str("build_id", report.BuildID).Int("indexed", report.Indexed).
		Dur("duration", report.Duration).Msg("build finished")
	return report, nil
}

func (b *Builder) encode(ctx context.Context, movies []catalog.Movie) ([][]float32, error) {
	log := logging.Component("builder")
	batch := b.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	source := b.Source.Name()
	dim := b.Encoder.Dimension()
	out := make([][]float32, 0, len(movies))
	for start := 0; start < len(movies); start += batch {
		end := min(start+batch, len(movies))
		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = movies[start+i].TextContent
		}
		vecs, err := b.Encoder.EncodeMany(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("builder: encode rows %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("builder: encoder returned %d vectors for %d texts", len(vecs), len(texts))
		}
		for _, v := range vecs {
			if len(v) != dim {
				return nil, fmt.Errorf("builder: %w", &embed.DimensionError{Want: dim, Got: len(v)})
			}
		}
		out = append(out, vecs...)
		metrics.BuildRecords.WithLabelValues(source, "embedded").Add(float64(len(vecs)))
		log.Info().Int("embedded", len(out)).Int("total", len(movies)).Msg("embedding progress")
	}
	return out, nil
}
