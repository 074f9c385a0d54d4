// Package datasource fetches public mentions and price history for a query.
// It implements fetchers for NewsAPI, search RSS feeds, the Twitter v2 API,
// the YouTube Data v3 API and the Yahoo Finance chart API.
//
// Fetchers never return errors to their callers. A failed or unconfigured
// source yields a Result with StatusDegraded and no items; the reason is
// logged and counted.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// ItemFetcher returns normalized content items for a query.
type ItemFetcher interface {
	// Name identifies the upstream service, e.g. "newsapi".
	Name() string
	// Source is the kind of item this fetcher produces.
	Source() models.Source
	Fetch(ctx context.Context, query string) Result
}

// StockFetcher returns daily closes for a query's ticker, if it has one.
type StockFetcher interface {
	Name() string
	FetchHistory(ctx context.Context, query string) StockResult
}

// Status is the outcome of one fetch.
type Status string

const (
	StatusOK       Status = "ok"
	StatusEmpty    Status = "empty"
	StatusDegraded Status = "degraded"
)

// Result is what an ItemFetcher produced for one query.
type Result struct {
	Fetcher string
	Source  models.Source
	Items   []models.ContentItem
	Status  Status
	Reason  string
}

// StockResult is what a StockFetcher produced for one query.
// Points is nil when the series is absent.
type StockResult struct {
	Ticker string
	Points []models.StockPoint
	Status Status
	Reason string
}

// --- Sentinel errors ---

// ErrMissingCredential is returned when a source has no API key configured.
var ErrMissingCredential = errors.New("missing credential")

// ErrNotFound is returned when a user, channel or playlist cannot be resolved.
var ErrNotFound = errors.New("not found")

// ErrUpstream is returned when a source answers 2xx with an error payload.
var ErrUpstream = errors.New("upstream error")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "pulsewatch/1.0 (+https://github.com/seenimoa/pulsewatch)"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", redactURL(url), err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// getJSON performs a GET and decodes the JSON body into v.
func getJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	body, _, err := doGet(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redactURL strips the query string so API keys never reach the logs.
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" || !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// --- Options ---

type options struct {
	baseURL string
	limit   int
	logger  *slog.Logger
}

// Option configures a fetcher.
type Option func(*options)

// WithBaseURL overrides the upstream endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLimit caps the number of items requested from the upstream.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithLogger sets the logger used for degrade warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(baseURL string, limit int, opts []Option) options {
	o := options{baseURL: baseURL, limit: limit, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// --- Result helpers ---

// fetcher carries what every ItemFetcher shares.
type fetcher struct {
	name   string
	source models.Source
	options
}

func (f *fetcher) Name() string          { return f.name }
func (f *fetcher) Source() models.Source { return f.source }

// finish turns the raw outcome of a fetch into a Result, logging and
// counting degrades.
func (f *fetcher) finish(query string, items []models.ContentItem, err error) Result {
	r := Result{Fetcher: f.name, Source: f.source}
	switch {
	case err != nil:
		r.Status = StatusDegraded
		r.Reason = err.Error()
		r.Items = []models.ContentItem{}
		f.logger.Warn("source degraded", "source", f.name, "query", query, "reason", r.Reason)
	case len(items) == 0:
		r.Status = StatusEmpty
		r.Items = []models.ContentItem{}
	default:
		r.Status = StatusOK
		r.Items = items
	}
	metrics.FetchTotal.WithLabelValues(f.name, string(r.Status)).Inc()
	metrics.FetchedItems.WithLabelValues(f.name).Add(float64(len(r.Items)))
	return r
}
