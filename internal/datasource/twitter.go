package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/pulsewatch/pkg/models"
	"github.com/seenimoa/pulsewatch/pkg/utils"
)

// Twitter fetches posts through the Twitter/X API v2.
//
// A query starting with "@" is treated as an account: the handle is resolved
// to a user id and that user's recent posts are returned. Anything else runs
// a recent-search for the keyword.
type Twitter struct {
	fetcher
	bearerToken string
}

// NewTwitter creates a Twitter fetcher. An empty token yields a fetcher that
// always degrades without calling out.
func NewTwitter(bearerToken string, opts ...Option) *Twitter {
	t := &Twitter{
		fetcher: fetcher{
			name:    "twitter",
			source:  models.SourceMicroblog,
			options: buildOptions("https://api.twitter.com", 100, opts),
		},
		bearerToken: bearerToken,
	}
	// The v2 endpoints accept 10..100 results per page.
	t.limit = max(10, min(t.limit, 100))
	return t
}

type twitterUserResponse struct {
	Data *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []twitterError `json:"errors"`
}

type twitterTweetsResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
	Errors []twitterError `json:"errors"`
}

type twitterError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Fetch returns up to 100 posts for the handle or keyword.
func (t *Twitter) Fetch(ctx context.Context, query string) Result {
	items, err := t.fetch(ctx, query)
	return t.finish(query, items, err)
}

func (t *Twitter) fetch(ctx context.Context, query string) ([]models.ContentItem, error) {
	if t.bearerToken == "" {
		return nil, ErrMissingCredential
	}
	query = strings.TrimSpace(query)
	if utils.IsHandle(query) {
		return t.userTimeline(ctx, strings.TrimPrefix(query, "@"))
	}
	return t.search(ctx, query)
}

func (t *Twitter) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + t.bearerToken}
}

func (t *Twitter) userTimeline(ctx context.Context, handle string) ([]models.ContentItem, error) {
	var user twitterUserResponse
	u := fmt.Sprintf("%s/2/users/by/username/%s", t.baseURL, url.PathEscape(handle))
	if err := getJSON(ctx, u, t.headers(), &user); err != nil {
		return nil, fmt.Errorf("twitter user @%s: %w", handle, err)
	}
	if user.Data == nil || user.Data.ID == "" {
		return nil, fmt.Errorf("twitter user @%s: %w", handle, ErrNotFound)
	}

	params := url.Values{}
	params.Set("max_results", strconv.Itoa(t.limit))

	var tweets twitterTweetsResponse
	u = fmt.Sprintf("%s/2/users/%s/tweets?%s", t.baseURL, url.PathEscape(user.Data.ID), params.Encode())
	if err := getJSON(ctx, u, t.headers(), &tweets); err != nil {
		return nil, fmt.Errorf("twitter timeline @%s: %w", handle, err)
	}
	if len(tweets.Data) == 0 && len(tweets.Errors) > 0 {
		return nil, fmt.Errorf("twitter timeline @%s: %w: %s", handle, ErrUpstream, tweets.Errors[0].Detail)
	}

	return t.toItems(tweets, func(id string) string {
		return fmt.Sprintf("https://twitter.com/%s/status/%s", handle, id)
	}), nil
}

func (t *Twitter) search(ctx context.Context, keyword string) ([]models.ContentItem, error) {
	params := url.Values{}
	params.Set("query", keyword)
	params.Set("max_results", strconv.Itoa(t.limit))

	var tweets twitterTweetsResponse
	u := fmt.Sprintf("%s/2/tweets/search/recent?%s", t.baseURL, params.Encode())
	if err := getJSON(ctx, u, t.headers(), &tweets); err != nil {
		return nil, fmt.Errorf("twitter search %q: %w", keyword, err)
	}
	if len(tweets.Data) == 0 && len(tweets.Errors) > 0 {
		return nil, fmt.Errorf("twitter search %q: %w: %s", keyword, ErrUpstream, tweets.Errors[0].Detail)
	}

	return t.toItems(tweets, func(id string) string {
		return "https://twitter.com/i/web/status/" + id
	}), nil
}

func (t *Twitter) toItems(resp twitterTweetsResponse, link func(id string) string) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(resp.Data))
	for _, tw := range resp.Data {
		if len(items) == t.limit {
			break
		}
		items = append(items, models.ContentItem{
			Source:      models.SourceMicroblog,
			Text:        tw.Text,
			Description: tw.Text,
			URL:         link(tw.ID),
		})
	}
	return items
}
