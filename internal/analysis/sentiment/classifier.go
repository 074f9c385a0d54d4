// Package sentiment labels text with a sentiment, a topic category and a
// short reason by asking a text-generation model.
package sentiment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/seenimoa/pulsewatch/internal/llm"
	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
	"github.com/seenimoa/pulsewatch/pkg/utils"
)

// DefaultMaxChars is how much of an item's text is sent to the model.
const DefaultMaxChars = 800

// Classifier scores one piece of text per call. It never fails: every
// problem collapses into a neutral/Other verdict with an explanatory reason.
type Classifier struct {
	provider llm.LLMProvider
	opts     *llm.ChatOptions
	maxChars int
	logger   *slog.Logger
}

// NewClassifier creates a classifier. provider may be nil when no key is
// configured, in which case every non-blank text gets "Analysis failed".
func NewClassifier(provider llm.LLMProvider, opts *llm.ChatOptions, maxChars int, logger *slog.Logger) *Classifier {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{provider: provider, opts: opts, maxChars: maxChars, logger: logger}
}

// Classify returns the sentiment triple for text.
func (c *Classifier) Classify(ctx context.Context, text string) models.SentimentTriple {
	if strings.TrimSpace(text) == "" {
		metrics.Classifications.WithLabelValues(string(models.Neutral), "no_text").Inc()
		return Fallback(ReasonNoText)
	}
	if c.provider == nil {
		metrics.Classifications.WithLabelValues(string(models.Neutral), "no_credential").Inc()
		return Fallback(ReasonAnalysisFailed)
	}

	start := time.Now()
	raw, err := llm.Prompt(ctx, c.provider, BuildPrompt(utils.Truncate(text, c.maxChars)), c.opts)
	metrics.LLMRequestDuration.WithLabelValues("classifier").Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("sentiment call failed", "error", err)
		metrics.Classifications.WithLabelValues(string(models.Neutral), "error").Inc()
		return Fallback(ReasonAnalysisFailed)
	}

	triple, err := ParseTriple(raw)
	switch {
	case errors.Is(err, ErrMissingField):
		c.logger.Debug("sentiment output missing fields", "output", utils.Truncate(raw, 200))
		metrics.Classifications.WithLabelValues(string(triple.Label), "missing_field").Inc()
	case errors.Is(err, ErrMalformed):
		c.logger.Debug("sentiment output malformed", "output", utils.Truncate(raw, 200))
		metrics.Classifications.WithLabelValues(string(triple.Label), "malformed").Inc()
	default:
		metrics.Classifications.WithLabelValues(string(triple.Label), "ok").Inc()
	}
	return triple
}
