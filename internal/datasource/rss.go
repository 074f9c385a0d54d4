package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// RSSNews searches a news aggregator's RSS search endpoint, such as
// https://news.google.com/rss/search?q=%s. The template takes the escaped
// query in place of its single %s verb.
type RSSNews struct {
	fetcher
	template string
	parser   *gofeed.Parser
}

// NewRSSNews creates an RSS search fetcher for the given URL template.
func NewRSSNews(template string, opts ...Option) *RSSNews {
	parser := gofeed.NewParser()
	parser.Client = HTTPClient
	parser.UserAgent = DefaultUserAgent
	return &RSSNews{
		fetcher: fetcher{
			name:    "rss",
			source:  models.SourceNews,
			options: buildOptions("", 20, opts),
		},
		template: template,
		parser:   parser,
	}
}

// Fetch returns up to the configured limit of feed entries for the query.
func (r *RSSNews) Fetch(ctx context.Context, query string) Result {
	items, err := r.fetch(ctx, query)
	return r.finish(query, items, err)
}

func (r *RSSNews) fetch(ctx context.Context, query string) ([]models.ContentItem, error) {
	if !strings.Contains(r.template, "%s") {
		return nil, fmt.Errorf("rss: search template %q has no %%s verb", r.template)
	}
	feedURL := fmt.Sprintf(r.template, url.QueryEscape(query))

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %q: %w", query, err)
	}

	items := make([]models.ContentItem, 0, min(len(feed.Items), r.limit))
	for _, entry := range feed.Items {
		if len(items) == r.limit {
			break
		}
		desc := entry.Description
		if desc == "" {
			desc = entry.Content
		}
		item := models.ContentItem{
			Source:      models.SourceNews,
			Title:       strings.TrimSpace(entry.Title),
			Description: cleanHTML(desc),
			URL:         entry.Link,
		}
		if entry.PublishedParsed != nil {
			ts := *entry.PublishedParsed
			item.PublishedAt = &ts
		}
		items = append(items, item)
	}
	return items, nil
}
