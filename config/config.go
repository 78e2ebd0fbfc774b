package config

import (
	"time"

	"github.com/viant/cinematch/logging"
)

// Config is the root configuration.
type Config struct {
	Logging   logging.Config  `koanf:"logging"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Encoder   EncoderConfig   `koanf:"encoder"`
	Recommend RecommendConfig `koanf:"recommend"`
	Summary   SummaryConfig   `koanf:"summary"`
	Server    ServerConfig    `koanf:"server"`
}

// ArtifactsConfig locates the metadata store and index file.
type ArtifactsConfig struct {
	Dir       string `koanf:"dir"`
	IndexKind string `koanf:"index_kind"` // flat or vptree
}

// CatalogConfig selects and configures the build data source.
type CatalogConfig struct {
	Source    string          `koanf:"source"` // tmdb or movielens
	TMDB      TMDBConfig      `koanf:"tmdb"`
	MovieLens MovieLensConfig `koanf:"movielens"`
}

// TMDBConfig configures the live discover feed.
type TMDBConfig struct {
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	Pages        int           `koanf:"pages"`
	Language     string        `koanf:"language"`
	MinVoteCount int           `koanf:"min_vote_count"`
	Timeout      time.Duration `koanf:"timeout"`
	Retries      int           `koanf:"retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
	RateLimit    float64       `koanf:"rate_limit"` // requests per second
}

// MovieLensConfig points at an extracted ml-latest-small directory.
type MovieLensConfig struct {
	Dir string `koanf:"dir"`
}

// EncoderConfig selects the embedding model. The same settings must be used
// for build and serve; the server verifies them against the build manifest.
type EncoderConfig struct {
	Provider  string        `koanf:"provider"` // http or hash
	Endpoint  string        `koanf:"endpoint"`
	APIKey    string        `koanf:"api_key"`
	Model     string        `koanf:"model"`
	Dimension int           `koanf:"dimension"`
	BatchSize int           `koanf:"batch_size"`
	Timeout   time.Duration `koanf:"timeout"`
}

// RecommendConfig tunes the hybrid scorer.
type RecommendConfig struct {
	DefaultTopK         int     `koanf:"default_top_k"`
	MaxTopK             int     `koanf:"max_top_k"`
	CandidateMultiplier int     `koanf:"candidate_multiplier"`
	SemanticWeight      float64 `koanf:"semantic_weight"`
	QualityWeight       float64 `koanf:"quality_weight"`
	PopularityWeight    float64 `koanf:"popularity_weight"`
}

// SummaryConfig configures the optional LLM summary.
type SummaryConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Endpoint string        `koanf:"endpoint"`
	APIKey   string        `koanf:"api_key"`
	Model    string        `koanf:"model"`
	Timeout  time.Duration `koanf:"timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Logging: logging.Config{Level: "info", Format: "json"},
		Artifacts: ArtifactsConfig{
			Dir:       "models",
			IndexKind: "flat",
		},
		Catalog: CatalogConfig{
			Source: "tmdb",
			TMDB: TMDBConfig{
				BaseURL:      "https://api.themoviedb.org/3",
				Pages:        20,
				Language:     "en-US",
				MinVoteCount: 50,
				Timeout:      10 * time.Second,
				Retries:      3,
				RetryBackoff: time.Second,
				RateLimit:    2,
			},
			MovieLens: MovieLensConfig{Dir: "data/ml-latest-small"},
		},
		Encoder: EncoderConfig{
			Provider:  "http",
			Endpoint:  "http://localhost:11434/v1/embeddings",
			Model:     "all-minilm",
			Dimension: 384,
			BatchSize: 64,
			Timeout:   30 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultTopK:         5,
			MaxTopK:             50,
			CandidateMultiplier: 10,
			SemanticWeight:      0.7,
			QualityWeight:       0.2,
			PopularityWeight:    0.1,
		},
		Summary: SummaryConfig{
			Enabled:  true,
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  20 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}
