package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/viant/cinematch/breaker"
	"github.com/viant/cinematch/config"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/metrics"
	"github.com/viant/cinematch/recommend"
)

const service = "llm"

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// LLMSummarizer calls an OpenAI-compatible chat completions endpoint.
type LLMSummarizer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[string]
}

// NewLLMSummarizer returns a summarizer for cfg.
func NewLLMSummarizer(cfg config.SummaryConfig) *LLMSummarizer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMSummarizer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		cb:       breaker.New[string]("llm-summary", breaker.Settings{Timeout: time.Minute}),
	}
}

// Summarize implements Summarizer.
func (s *LLMSummarizer) Summarize(ctx context.Context, query string, recs []recommend.Recommendation) Summary {
	if len(recs) == 0 {
		metrics.SummaryRequests.WithLabelValues(string(StatusUnavailable)).Inc()
		return Summary{Status: StatusUnavailable}
	}
	text, err := breaker.Execute(s.cb, service, func() (string, error) {
		return s.chat(ctx, Prompt(query, recs))
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("summary: empty completion")
	}
	if err != nil {
		logging.Warn().Err(err).Str("query", query).Msg("summary unavailable")
		metrics.SummaryRequests.WithLabelValues(string(StatusUnavailable)).Inc()
		return Summary{Status: StatusUnavailable}
	}
	metrics.SummaryRequests.WithLabelValues(string(StatusAvailable)).Inc()
	return Summary{Status: StatusAvailable, Text: strings.TrimSpace(text)}
}

func (s *LLMSummarizer) chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("summary: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("summary: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("summary: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summary: api error (status %d)", resp.StatusCode)
	}
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("summary: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("summary: no choices returned")
	}
	return out.Choices[0].Message.Content, nil
}
