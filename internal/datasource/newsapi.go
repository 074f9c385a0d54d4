package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// NewsAPI searches articles through newsapi.org's /v2/everything endpoint.
type NewsAPI struct {
	fetcher
	apiKey string
}

// NewNewsAPI creates a NewsAPI fetcher. An empty key yields a fetcher that
// always degrades without calling out.
func NewNewsAPI(apiKey string, opts ...Option) *NewsAPI {
	return &NewsAPI{
		fetcher: fetcher{
			name:    "newsapi",
			source:  models.SourceNews,
			options: buildOptions("https://newsapi.org", 20, opts),
		},
		apiKey: apiKey,
	}
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch returns up to the configured page size of English articles, most relevant first.
func (n *NewsAPI) Fetch(ctx context.Context, query string) Result {
	items, err := n.fetch(ctx, query)
	return n.finish(query, items, err)
}

func (n *NewsAPI) fetch(ctx context.Context, query string) ([]models.ContentItem, error) {
	if n.apiKey == "" {
		return nil, ErrMissingCredential
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(n.limit))

	var resp newsAPIResponse
	err := getJSON(ctx, n.baseURL+"/v2/everything?"+params.Encode(), map[string]string{
		"X-Api-Key": n.apiKey,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("newsapi %q: %w", query, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi %q: %w: %s - %s", query, ErrUpstream, resp.Code, resp.Message)
	}

	items := make([]models.ContentItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		item := models.ContentItem{
			Source:      models.SourceNews,
			Title:       a.Title,
			Description: cleanHTML(a.Description),
			URL:         a.URL,
		}
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			item.PublishedAt = &ts
		}
		items = append(items, item)
		if len(items) == n.limit {
			break
		}
	}
	return items, nil
}
