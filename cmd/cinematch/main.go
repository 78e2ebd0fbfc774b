// Command cinematch builds recommendation artifacts and serves them over
// HTTP.
//
//	cinematch build [-config file] [-source tmdb|movielens] [-out dir] [-index flat|vptree]
//	cinematch serve [-config file] [-dir dir] [-addr :8080]
//	cinematch inspect [-config file] [-dir dir] [-k 10] [-verify] -q "query text"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/viant/cinematch/artifact"
	"github.com/viant/cinematch/builder"
	"github.com/viant/cinematch/catalog"
	"github.com/viant/cinematch/catalog/tmdb"
	"github.com/viant/cinematch/config"
	"github.com/viant/cinematch/embed"
	"github.com/viant/cinematch/index"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/recommend"
	"github.com/viant/cinematch/server"
	"github.com/viant/cinematch/store"
	"github.com/viant/cinematch/summary"
	"github.com/viant/cinematch/vec"
	"github.com/viant/cinematch/vecadmin"
)

const usage = `usage: cinematch <command> [flags]

commands:
  build   fetch a catalog, embed it and write artifacts
  serve   load artifacts and serve the HTTP API
  inspect run a raw nearest-neighbour query against built artifacts
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "inspect":
		err = runInspect(ctx, os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logging.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	override(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(cfg.Logging)
	return cfg, nil
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (YAML)")
	source := fs.String("source", "", "catalog source: tmdb or movielens")
	out := fs.String("out", "", "artifact output directory")
	kind := fs.String("index", "", "index kind: flat or vptree")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, func(c *config.Config) {
		if *source != "" {
			c.Catalog.Source = *source
		}
		if *out != "" {
			c.Artifacts.Dir = *out
		}
		if *kind != "" {
			c.Artifacts.IndexKind = *kind
		}
	})
	if err != nil {
		return err
	}

	src, err := newSource(cfg.Catalog)
	if err != nil {
		return err
	}
	enc, err := embed.New(cfg.Encoder)
	if err != nil {
		return err
	}
	indexKind, err := index.ParseKind(cfg.Artifacts.IndexKind)
	if err != nil {
		return err
	}

	b := &builder.Builder{
		Source:    src,
		Encoder:   enc,
		IndexKind: indexKind,
		BatchSize: cfg.Encoder.BatchSize,
		OutputDir: cfg.Artifacts.Dir,
	}
	report, err := b.Run(ctx)
	if err != nil {
		if errors.Is(err, builder.ErrNoRecords) {
			return fmt.Errorf("nothing to index, previous artifacts left in place: %w", err)
		}
		return err
	}
	logging.Info().
		Str("build_id", report.BuildID).
		Str("source", report.Source).
		Int("indexed", report.Indexed).
		Int("skipped", report.Skipped).
		Int("failed_pages", report.FailedPages).
		Str("dir", cfg.Artifacts.Dir).
		Dur("duration", report.Duration).
		Msg("build complete")
	return nil
}

func newSource(cfg config.CatalogConfig) (catalog.Source, error) {
	switch cfg.Source {
	case catalog.SourceTMDB:
		if cfg.TMDB.APIKey == "" {
			return nil, errors.New("catalog.tmdb.api_key (or TMDB_API_KEY) is required for the tmdb source")
		}
		client := tmdb.New(tmdb.Options{
			BaseURL:      cfg.TMDB.BaseURL,
			APIKey:       cfg.TMDB.APIKey,
			Language:     cfg.TMDB.Language,
			MinVoteCount: cfg.TMDB.MinVoteCount,
			Timeout:      cfg.TMDB.Timeout,
			Retries:      cfg.TMDB.Retries,
			RetryBackoff: cfg.TMDB.RetryBackoff,
			RateLimit:    cfg.TMDB.RateLimit,
		})
		return catalog.NewTMDBFeed(client, cfg.TMDB.Pages), nil
	case catalog.SourceMovieLens:
		return catalog.NewMovieLensDataset(cfg.MovieLens.Dir), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (YAML)")
	dir := fs.String("dir", "", "artifact directory")
	addr := fs.String("addr", "", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, func(c *config.Config) {
		if *dir != "" {
			c.Artifacts.Dir = *dir
		}
		if *addr != "" {
			c.Server.Addr = *addr
		}
	})
	if err != nil {
		return err
	}

	enc, err := embed.New(cfg.Encoder)
	if err != nil {
		return err
	}
	a, err := artifact.Load(ctx, cfg.Artifacts.Dir, artifact.LoadOptions{Model: enc.Model(), Dimension: enc.Dimension()})
	if err != nil {
		return fmt.Errorf("load artifacts (run 'cinematch build' first): %w", err)
	}
	rec, err := recommend.New(a.Movies, a.Index, enc, recommend.OptionsFrom(cfg.Recommend))
	if err != nil {
		return err
	}

	srv := server.New(rec, summary.New(cfg.Summary), server.Info{
		BuildID:   a.Manifest.BuildID,
		Model:     a.Manifest.Model,
		Source:    a.Manifest.Source,
		IndexKind: a.Manifest.IndexKind,
	}, cfg.Server)
	return srv.Run(ctx)
}

func runInspect(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (YAML)")
	dir := fs.String("dir", "", "artifact directory")
	query := fs.String("q", "", "query text")
	k := fs.Int("k", vec.DefaultK, "neighbours to return")
	verify := fs.Bool("verify", false, "check every indexed vector against the stored embeddings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *query == "" {
		return errors.New("inspect: -q is required")
	}

	cfg, err := loadConfig(*configPath, func(c *config.Config) {
		if *dir != "" {
			c.Artifacts.Dir = *dir
		}
	})
	if err != nil {
		return err
	}
	enc, err := embed.New(cfg.Encoder)
	if err != nil {
		return err
	}
	a, err := artifact.Load(ctx, cfg.Artifacts.Dir, artifact.LoadOptions{Model: enc.Model(), Dimension: enc.Dimension()})
	if err != nil {
		return err
	}
	qv, err := enc.Encode(ctx, *query)
	if err != nil {
		return err
	}

	storePath, _ := artifact.Paths(cfg.Artifacts.Dir)
	s, err := store.OpenReadOnly(ctx, storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	name := "build"
	vec.Attach(name, a.Index)
	defer vec.Detach(name)
	hits, err := vec.Nearest(ctx, s.DB(), name, qv, *k)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "build %s (%s, %s index) in %s\n", a.Manifest.BuildID, a.Manifest.Model, a.Manifest.IndexKind, filepath.Clean(cfg.Artifacts.Dir))
	if *verify {
		result, err := vecadmin.Check(ctx, s.DB(), storePath, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, result)
	}
	for i, h := range hits {
		fmt.Fprintf(w, "%2d. %-50s id=%-8d row=%-6d distance=%.4f\n", i+1, h.Title, h.ID, h.Row, h.Distance)
	}
	return nil
}
