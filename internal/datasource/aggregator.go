package datasource

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// Aggregator fans a query out to every configured source concurrently.
type Aggregator struct {
	news      []ItemFetcher
	microblog ItemFetcher
	video     ItemFetcher
	market    StockFetcher
	logger    *slog.Logger
}

// NewAggregator wires the fetchers together. Any of them may be nil.
func NewAggregator(news []ItemFetcher, microblog, video ItemFetcher, market StockFetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		news:      news,
		microblog: microblog,
		video:     video,
		market:    market,
		logger:    logger,
	}
}

// Collection is everything gathered for one query.
type Collection struct {
	// Items holds news, then microblog, then video items.
	Items   []models.ContentItem
	Stock   StockResult
	Results []Result
}

// Collect fetches the query from all sources. News and market history are
// skipped in social-only mode. Per-source failures never abort the others.
func (a *Aggregator) Collect(ctx context.Context, query string, socialOnly bool) Collection {
	var fetchers []ItemFetcher
	if !socialOnly {
		fetchers = append(fetchers, a.news...)
	}
	if a.microblog != nil {
		fetchers = append(fetchers, a.microblog)
	}
	if a.video != nil {
		fetchers = append(fetchers, a.video)
	}

	// Each goroutine owns one slot, so no locking is needed.
	results := make([]Result, len(fetchers))
	var stock StockResult

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetchers {
		i, f := i, f
		g.Go(func() error {
			results[i] = f.Fetch(gctx, query)
			return nil // non-fatal
		})
	}
	if !socialOnly && a.market != nil {
		g.Go(func() error {
			stock = a.market.FetchHistory(gctx, query)
			return nil
		})
	}
	_ = g.Wait()

	var c Collection
	c.Stock = stock
	c.Results = results
	for _, src := range []models.Source{models.SourceNews, models.SourceMicroblog, models.SourceVideo} {
		for _, r := range results {
			if r.Source == src {
				c.Items = append(c.Items, r.Items...)
			}
		}
	}

	a.logger.Debug("sources collected", "query", query, "items", len(c.Items), "stock_points", len(stock.Points))
	return c
}
