// Package embed turns movie and query text into fixed-dimension vectors.
//
// The same Encoder model must be used to build an index and to query it;
// Model and Dimension are recorded in the build manifest and checked when
// artifacts are loaded.
package embed

import (
	"context"
	"fmt"

	"github.com/viant/cinematch/config"
)

// Encoder maps text to embeddings. Implementations are safe for concurrent
// use.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

const (
	ProviderHTTP = "http"
	ProviderHash = "hash"
)

// New builds the encoder selected by cfg.Provider.
func New(cfg config.EncoderConfig) (Encoder, error) {
	switch cfg.Provider {
	case ProviderHTTP, "":
		return NewHTTPEncoder(HTTPOptions{
			Endpoint:  cfg.Endpoint,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}), nil
	case ProviderHash:
		return NewHashEncoder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("embed: unknown provider %q", cfg.Provider)
	}
}

// DimensionError reports a vector of unexpected length.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embed: dimension mismatch: want %d, got %d", e.Want, e.Got)
}
