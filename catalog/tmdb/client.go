// Package tmdb is a small client for the TMDB discover endpoint.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/viant/cinematch/breaker"
	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/metrics"
)

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const service = "tmdb"

// ErrUnauthorized reports a rejected API key. It is not retried.
var ErrUnauthorized = errors.New("tmdb: unauthorized")

// StatusError is a non-success HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: unexpected status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	APIKey       string
	Language     string
	MinVoteCount int
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
	HTTPClient   *http.Client
}

// Client fetches discover pages sorted by popularity.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*DiscoverPage]
}

// New returns a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		opts:    opts,
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
		cb:      breaker.New[*DiscoverPage]("tmdb-api", breaker.Settings{}),
	}
}

// Discover fetches one 1-based page of /discover/movie.
func (c *Client) Discover(ctx context.Context, page int) (*DiscoverPage, error) {
	return breaker.Execute(c.cb, service, func() (*DiscoverPage, error) {
		return c.discoverWithRetry(ctx, page)
	})
}

func (c *Client) discoverWithRetry(ctx context.Context, page int) (*DiscoverPage, error) {
	var lastErr error
	delay := c.opts.RetryBackoff
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			metrics.UpstreamRequests.WithLabelValues(service, "retry").Inc()
			logging.Warn().Err(lastErr).Int("page", page).Int("attempt", attempt).
				Dur("delay", delay).Msg("retrying tmdb request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
		result, wait, err := c.discover(ctx, page)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
		if wait > delay {
			delay = wait
		}
	}
	return nil, fmt.Errorf("tmdb: page %d: giving up after %d attempts: %w", page, c.opts.Retries+1, lastErr)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, ErrUnauthorized) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var decodeErr *json.SyntaxError
	return !errors.As(err, &decodeErr)
}

func (c *Client) discover(ctx context.Context, page int) (*DiscoverPage, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}
	params := url.Values{}
	params.Set("api_key", c.opts.APIKey)
	params.Set("language", c.opts.Language)
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(page))
	params.Set("vote_count.gte", strconv.Itoa(c.opts.MinVoteCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/discover/movie?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("tmdb: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, 0, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, retryAfter(resp.Header.Get("Retry-After")), &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var out DiscoverPage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("tmdb: decode page %d: %w", page, err)
	}
	return &out, 0, nil
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
