package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/seenimoa/pulsewatch/internal/analysis/sentiment"
	"github.com/seenimoa/pulsewatch/internal/analysis/summary"
	"github.com/seenimoa/pulsewatch/internal/config"
	"github.com/seenimoa/pulsewatch/internal/datasource"
	"github.com/seenimoa/pulsewatch/internal/events"
	"github.com/seenimoa/pulsewatch/internal/llm"
	"github.com/seenimoa/pulsewatch/internal/pipeline"
	"github.com/seenimoa/pulsewatch/internal/report"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// app holds the components built once at startup.
type app struct {
	pipeline  *pipeline.Pipeline
	publisher events.Publisher
	nats      *events.NATSPublisher
}

// Close releases external connections.
func (a *app) Close() {
	if a.nats != nil {
		_ = a.nats.Close()
	}
}

// buildApp wires fetchers, model clients, the renderer and the event sinks
// from configuration. Missing credentials never fail startup; the affected
// component degrades instead.
func buildApp(cfg *config.Config, logger *slog.Logger, withReport bool) *app {
	log := datasource.WithLogger(logger)

	news := []datasource.ItemFetcher{
		datasource.NewNewsAPI(cfg.News.APIKey,
			datasource.WithBaseURL(cfg.News.BaseURL),
			datasource.WithLimit(cfg.News.PageSize), log),
	}
	if cfg.News.RSSSearchURL != "" {
		news = append(news, datasource.NewRSSNews(cfg.News.RSSSearchURL,
			datasource.WithLimit(cfg.News.PageSize), log))
	}
	twitter := datasource.NewTwitter(cfg.Twitter.BearerToken,
		datasource.WithBaseURL(cfg.Twitter.BaseURL),
		datasource.WithLimit(cfg.Twitter.MaxResults), log)
	youtube := datasource.NewYouTube(cfg.YouTube.APIKey,
		datasource.WithBaseURL(cfg.YouTube.BaseURL),
		datasource.WithLimit(cfg.YouTube.MaxResults), log)
	market := datasource.NewYFinance(cfg.Market.Range,
		datasource.WithBaseURL(cfg.Market.BaseURL), log)

	collector := datasource.NewAggregator(news, twitter, youtube, market, logger)

	chatOpts := &llm.ChatOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	classifier := sentiment.NewClassifier(
		newProvider(cfg.LLM.ClassifierKey, cfg.LLM, logger, "classifier"),
		chatOpts, cfg.Analysis.MaxTextChars, logger)
	summarizer := summary.New(
		newProvider(cfg.LLM.SummarizerKey, cfg.LLM, logger, "summarizer"),
		chatOpts, cfg.Summary.Timeout, logger)

	var renderer pipeline.Renderer
	if withReport {
		renderer = report.NewRenderer(report.DefaultConfig())
	}

	a := &app{
		pipeline: pipeline.New(collector, classifier, summarizer, renderer, pipeline.Options{
			ReportsDir: cfg.Report.Dir,
			Workers:    cfg.Analysis.ClassifyWorkers,
			Logger:     logger,
		}),
	}

	if cfg.Events.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.NATSSubject, logger)
		if err != nil {
			logger.Warn("nats events disabled", "error", err)
		} else {
			a.nats = np
			a.publisher = np
		}
	}
	return a
}

// newProvider returns a Gemini client, or a nil interface when key is empty
// so callers can test for it directly.
func newProvider(key string, lc config.LLMConfig, logger *slog.Logger, component string) llm.LLMProvider {
	p, err := llm.NewGeminiProvider(key,
		llm.WithGeminiModel(lc.Model),
		llm.WithGeminiBaseURL(lc.BaseURL))
	if err != nil {
		logger.Warn("text generation disabled", "component", component, "error", err)
		return nil
	}
	return p
}

// providerCheck is the outcome of pinging one configured text-generation key.
type providerCheck struct {
	Component  string
	Configured bool
	Err        error
}

// checkProviders pings the classifier and summarizer keys separately.
func checkProviders(ctx context.Context, lc config.LLMConfig, logger *slog.Logger) []providerCheck {
	keys := []struct{ component, key string }{
		{"classifier", lc.ClassifierKey},
		{"summarizer", lc.SummarizerKey},
	}
	out := make([]providerCheck, 0, len(keys))
	for _, k := range keys {
		p := newProvider(k.key, lc, logger, k.component)
		if p == nil {
			out = append(out, providerCheck{Component: k.component})
			continue
		}
		out = append(out, providerCheck{Component: k.component, Configured: true, Err: p.Ping(ctx)})
	}
	return out
}

// writePDF renders rep to dest, or streams it to w when dest is "-".
func writePDF(w io.Writer, dest string, rep *models.AnalysisReport) error {
	r := report.NewRenderer(report.DefaultConfig())
	if dest == "-" {
		return r.Write(w, rep.Queries, rep.Summary, rep.Results)
	}
	return r.Render(dest, rep.Queries, rep.Summary, rep.Results)
}
