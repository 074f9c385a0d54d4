// Package pipeline runs the fetch, classify, summarise and render stages
// for a list of queries and assembles the AnalysisReport.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/pulsewatch/internal/datasource"
	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// Collector gathers raw items and the price series for one query.
type Collector interface {
	Collect(ctx context.Context, query string, socialOnly bool) datasource.Collection
}

// Classifier labels one text. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, text string) models.SentimentTriple
}

// Summarizer writes the cross-query narrative. It must not fail.
type Summarizer interface {
	Summarize(ctx context.Context, queries []string, items []models.ContentItem) string
}

// Renderer writes the downloadable document.
type Renderer interface {
	Render(path string, queries []string, summary string, results map[string]models.QueryResult) error
}

// DefaultWorkers bounds concurrent classifier calls within one query.
const DefaultWorkers = 4

// Options configure a Pipeline.
type Options struct {
	ReportsDir string // where PDFs are written (default "reports")
	Workers    int    // classifier concurrency (default DefaultWorkers)
	Logger     *slog.Logger
}

// Pipeline is built once at startup and shared by all requests.
type Pipeline struct {
	collector  Collector
	classifier Classifier
	summarizer Summarizer
	renderer   Renderer

	reportsDir string
	workers    int
	logger     *slog.Logger
	newID      func() string
}

// New creates a Pipeline. renderer may be nil to disable report output.
func New(collector Collector, classifier Classifier, summarizer Summarizer, renderer Renderer, opts Options) *Pipeline {
	if opts.ReportsDir == "" {
		opts.ReportsDir = "reports"
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{
		collector:  collector,
		classifier: classifier,
		summarizer: summarizer,
		renderer:   renderer,
		reportsDir: opts.ReportsDir,
		workers:    opts.Workers,
		logger:     opts.Logger,
		newID:      func() string { return uuid.NewString() },
	}
}

// ReportsDir is the directory reports are written to.
func (p *Pipeline) ReportsDir() string { return p.reportsDir }

// Aggregate analyses every query in order and never fails. Blank queries
// are skipped; a repeated query keeps the later result.
func (p *Pipeline) Aggregate(ctx context.Context, queries []string, socialOnly bool) *models.AnalysisReport {
	start := time.Now()
	rep := &models.AnalysisReport{
		Queries: []string{},
		Results: make(map[string]models.QueryResult),
	}
	var all []models.ContentItem

	for _, raw := range queries {
		q := strings.TrimSpace(raw)
		if q == "" {
			continue
		}
		res, items := p.analyzeQuery(ctx, q, socialOnly)
		if _, seen := rep.Results[q]; !seen {
			rep.Queries = append(rep.Queries, q)
		}
		rep.Results[q] = res
		all = append(all, items...)
	}

	rep.Summary = p.summarizer.Summarize(ctx, rep.Queries, all)
	rep.ReportURL = p.writeReport(rep)

	p.logger.Info("analysis complete",
		"queries", len(rep.Queries),
		"items", len(all),
		"social_only", socialOnly,
		"report", rep.ReportURL != nil,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return rep
}

func (p *Pipeline) analyzeQuery(ctx context.Context, query string, socialOnly bool) (models.QueryResult, []models.ContentItem) {
	c := p.collector.Collect(ctx, query, socialOnly)
	items := c.Items
	p.classifyAll(ctx, items)

	var overview models.SentimentOverview
	for _, it := range items {
		overview.Count(it.Sentiment)
	}
	news, micro, video := Partition(items)
	// nil means no tracked ticker; social-only mode never looks one up.
	stock := c.Stock.Points
	if stock == nil && socialOnly {
		stock = []models.StockPoint{}
	}

	res := models.QueryResult{
		Overview:     overview,
		SummaryText:  Characterize(overview),
		Articles:     news,
		TwitterPosts: micro,
		YouTubePosts: video,
		StockTrends:  stock,
	}
	p.logger.Info("query analysed",
		"query", query,
		"positive", overview.Positive,
		"negative", overview.Negative,
		"neutral", overview.Neutral,
		"stock_points", len(res.StockTrends))
	return res, items
}

// classifyAll annotates items in place using a bounded worker pool. Each
// goroutine writes only its own index.
func (p *Pipeline) classifyAll(ctx context.Context, items []models.ContentItem) {
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range items {
		i := i
		g.Go(func() error {
			items[i].Annotate(p.classifier.Classify(ctx, items[i].PrimaryText()))
			return nil
		})
	}
	_ = g.Wait()
}

// writeReport renders the PDF when at least one query has data and returns
// its download link. Render failures are logged and yield no link.
func (p *Pipeline) writeReport(rep *models.AnalysisReport) *string {
	if p.renderer == nil {
		return nil
	}
	hasData := false
	for _, r := range rep.Results {
		if r.HasData() {
			hasData = true
			break
		}
	}
	if !hasData {
		metrics.ReportsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	name := p.newID() + ".pdf"
	path := filepath.Join(p.reportsDir, name)
	if err := p.renderer.Render(path, rep.Queries, rep.Summary, rep.Results); err != nil {
		p.logger.Error("report generation failed", "file", name, "error", err)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("removing partial report", "file", name, "error", rmErr)
		}
		metrics.ReportsTotal.WithLabelValues("error").Inc()
		return nil
	}
	metrics.ReportsTotal.WithLabelValues("ok").Inc()
	link := "/download/" + name
	return &link
}

// Characterize turns counts into the one-sentence verdict.
func Characterize(o models.SentimentOverview) string {
	switch {
	case o.Total == 0:
		return "No public sentiment data could be found."
	case o.Positive > o.Negative && o.Positive > o.Neutral:
		return fmt.Sprintf("Overall sentiment is predominantly positive, based on %d total mentions.", o.Total)
	case o.Negative > o.Positive:
		return fmt.Sprintf("Overall sentiment is predominantly negative, based on %d total mentions.", o.Total)
	default:
		return fmt.Sprintf("Sentiment is mixed across %d mentions.", o.Total)
	}
}

// Partition splits items by source, preserving order. The returned slices
// are never nil so they encode as [] rather than null.
func Partition(items []models.ContentItem) (news, microblog, video []models.ContentItem) {
	news, microblog, video = []models.ContentItem{}, []models.ContentItem{}, []models.ContentItem{}
	for _, it := range items {
		switch it.Source {
		case models.SourceNews:
			news = append(news, it)
		case models.SourceMicroblog:
			microblog = append(microblog, it)
		case models.SourceVideo:
			video = append(video, it)
		}
	}
	return news, microblog, video
}
