// Package summary produces an optional natural-language explanation of a
// recommendation list. A summary never blocks or fails a recommendation: any
// error is logged and reported as StatusUnavailable.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/cinematch/config"
	"github.com/viant/cinematch/metrics"
	"github.com/viant/cinematch/recommend"
)

// Status tells the caller why Text is or is not present.
type Status string

const (
	StatusDisabled    Status = "disabled"
	StatusUnavailable Status = "unavailable"
	StatusAvailable   Status = "available"
)

// Summary is the outcome of one summarization attempt. Text is set only when
// Status is StatusAvailable.
type Summary struct {
	Status Status `json:"status"`
	Text   string `json:"text,omitempty"`
}

// Summarizer explains why recs fit query.
type Summarizer interface {
	Summarize(ctx context.Context, query string, recs []recommend.Recommendation) Summary
}

// Disabled always reports StatusDisabled.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string, []recommend.Recommendation) Summary {
	metrics.SummaryRequests.WithLabelValues(string(StatusDisabled)).Inc()
	return Summary{Status: StatusDisabled}
}

// New returns an LLMSummarizer, or Disabled when summaries are switched off
// or no API key is configured.
func New(cfg config.SummaryConfig) Summarizer {
	if !cfg.Enabled || cfg.APIKey == "" {
		return Disabled{}
	}
	return NewLLMSummarizer(cfg)
}

// Prompt renders the request sent to the language model.
func Prompt(query string, recs []recommend.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %q\n", query)
	b.WriteString("Top Movies:\n")
	for i := range recs {
		genres := recs[i].Movie.GenresString()
		if genres == "" {
			genres = "N/A"
		}
		fmt.Fprintf(&b, "%d. %s (Genres: %s)\n", i+1, recs[i].Movie.Title, genres)
	}
	b.WriteString("\nTask: Write a 2-sentence summary explaining why these movies fit the vibe.\n")
	return b.String()
}
