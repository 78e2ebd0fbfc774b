package embed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/viant/cinematch/breaker"
)

const (
	DefaultEndpoint  = "http://localhost:11434/v1"
	DefaultModel     = "all-minilm"
	DefaultDimension = 384
	DefaultBatchSize = 64

	service = "embeddings"
)

// HTTPOptions configures an HTTPEncoder.
type HTTPOptions struct {
	Endpoint   string // API root such as http://host:11434/v1, or a full .../embeddings URL
	APIKey     string
	Model      string
	Dimension  int
	BatchSize  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPEncoder calls an OpenAI-compatible embeddings endpoint (OpenAI, Ollama,
// vLLM, LocalAI).
type HTTPEncoder struct {
	url       string
	apiKey    string
	model     string
	dim       int
	batchSize int
	client    *http.Client
	cb        *gobreaker.CircuitBreaker[[][]float32]
}

// NewHTTPEncoder returns an HTTPEncoder with defaults applied.
func NewHTTPEncoder(opts HTTPOptions) *HTTPEncoder {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Dimension <= 0 {
		opts.Dimension = DefaultDimension
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	url := strings.TrimRight(opts.Endpoint, "/")
	if !strings.HasSuffix(url, "/embeddings") {
		url += "/embeddings"
	}
	return &HTTPEncoder{
		url:       url,
		apiKey:    opts.APIKey,
		model:     opts.Model,
		dim:       opts.Dimension,
		batchSize: opts.BatchSize,
		client:    client,
		cb:        breaker.New[[][]float32](service, breaker.Settings{}),
	}
}

func (e *HTTPEncoder) Dimension() int { return e.dim }

func (e *HTTPEncoder) Model() string { return e.model }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *HTTPEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EncodeMany splits texts into batches of the configured size.
func (e *HTTPEncoder) EncodeMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed: batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *HTTPEncoder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := breaker.Execute(e.cb, service, func() ([][]float32, error) {
		return e.call(ctx, texts)
	})
	if breaker.IsRejected(err) {
		return nil, fmt.Errorf("embed: %s circuit open: %w", service, err)
	}
	return vecs, err
}

func (e *HTTPEncoder) call(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: api error (status %d): %s", resp.StatusCode, truncate(payload, 256))
	}

	var out embeddingResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("embed: api error: %s", out.Error.Message)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embed: expected %d embeddings, got %d", len(texts), len(out.Data))
	}

	// Each input index 0..n-1 must appear exactly once.
	vecs := make([][]float32, len(out.Data))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, fmt.Errorf("embed: response index %d out of range [0,%d)", d.Index, len(vecs))
		}
		if vecs[d.Index] != nil {
			return nil, fmt.Errorf("embed: duplicate response index %d", d.Index)
		}
		if len(d.Embedding) != e.dim {
			return nil, &DimensionError{Want: e.dim, Got: len(d.Embedding)}
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
