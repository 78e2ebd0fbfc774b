package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/cinematch/index"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := index.ParseKind(c.Artifacts.IndexKind); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Artifacts.Dir) == "" {
		errs = append(errs, errors.New("artifacts.dir is required"))
	}
	switch c.Catalog.Source {
	case "tmdb", "movielens":
	default:
		errs = append(errs, fmt.Errorf("catalog.source %q must be tmdb or movielens", c.Catalog.Source))
	}
	if c.Catalog.TMDB.Pages < 1 {
		errs = append(errs, errors.New("catalog.tmdb.pages must be >= 1"))
	}
	if c.Catalog.TMDB.Retries < 0 {
		errs = append(errs, errors.New("catalog.tmdb.retries must be >= 0"))
	}
	if c.Catalog.TMDB.RateLimit <= 0 {
		errs = append(errs, errors.New("catalog.tmdb.rate_limit must be > 0"))
	}
	switch c.Encoder.Provider {
	case "http":
		if c.Encoder.Endpoint == "" || c.Encoder.Model == "" {
			errs = append(errs, errors.New("encoder.endpoint and encoder.model are required for the http provider"))
		}
	case "hash":
	default:
		errs = append(errs, fmt.Errorf("encoder.provider %q must be http or hash", c.Encoder.Provider))
	}
	if c.Encoder.Dimension < 1 {
		errs = append(errs, errors.New("encoder.dimension must be >= 1"))
	}
	if c.Encoder.BatchSize < 1 {
		errs = append(errs, errors.New("encoder.batch_size must be >= 1"))
	}
	r := c.Recommend
	if r.DefaultTopK < 1 || r.MaxTopK < r.DefaultTopK {
		errs = append(errs, errors.New("recommend: need 1 <= default_top_k <= max_top_k"))
	}
	if r.CandidateMultiplier < 1 {
		errs = append(errs, errors.New("recommend.candidate_multiplier must be >= 1"))
	}
	if r.SemanticWeight < 0 || r.QualityWeight < 0 || r.PopularityWeight < 0 {
		errs = append(errs, errors.New("recommend weights must be non-negative"))
	}
	if r.SemanticWeight+r.QualityWeight+r.PopularityWeight == 0 {
		errs = append(errs, errors.New("recommend weights must not all be zero"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
