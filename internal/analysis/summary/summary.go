// Package summary produces the cross-query narrative for an analysis run.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seenimoa/pulsewatch/internal/llm"
	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// DefaultTimeout bounds the single summarisation call.
const DefaultTimeout = 60 * time.Second

// NoArticles is returned when there is nothing to summarise.
const NoArticles = "No articles found to summarize."

// Summarizer asks a text-generation model for one paragraph covering every
// collected item. The result is always a string; failures are reported in it.
type Summarizer struct {
	provider llm.LLMProvider
	opts     *llm.ChatOptions
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a Summarizer. A nil provider makes every non-empty call
// return an "Error generating summary" string.
func New(provider llm.LLMProvider, opts *llm.ChatOptions, timeout time.Duration, logger *slog.Logger) *Summarizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{provider: provider, opts: opts, timeout: timeout, logger: logger}
}

// Summarize returns prose about queries drawn from items, or an error
// string beginning with "Error generating summary:".
func (s *Summarizer) Summarize(ctx context.Context, queries []string, items []models.ContentItem) string {
	if len(items) == 0 {
		return NoArticles
	}
	if s.provider == nil {
		return errorText(llm.ErrNoAPIKey)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := llm.Prompt(ctx, s.provider, BuildPrompt(queries, items), s.opts)
	metrics.LLMRequestDuration.WithLabelValues("summarizer").Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("summary generation failed", "queries", queries, "error", err)
		return errorText(err)
	}
	return strings.TrimSpace(out)
}

// BuildPrompt joins one "title: description" line per item that has a
// description, under a header naming every query.
func BuildPrompt(queries []string, items []models.ContentItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the public perception and recent news about an analysis of %s:\n",
		strings.Join(queries, ", "))

	first := true
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(it.Title)
		b.WriteString(": ")
		b.WriteString(it.Description)
	}
	return b.String()
}

func errorText(err error) string {
	return fmt.Sprintf("Error generating summary: %v", err)
}
