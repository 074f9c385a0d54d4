package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
	"github.com/seenimoa/pulsewatch/pkg/utils"
)

// YFinance fetches daily closes from the Yahoo Finance chart API.
// Queries are mapped to tickers through a fixed name table; unknown names
// produce an absent series without any request.
type YFinance struct {
	baseURL  string
	lookback time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewYFinance creates a price history fetcher. lookback is a day count such
// as "100d"; anything unparsable falls back to 100 days.
func NewYFinance(lookback string, opts ...Option) *YFinance {
	o := buildOptions("https://query1.finance.yahoo.com", 0, opts)
	return &YFinance{
		baseURL:  o.baseURL,
		lookback: parseLookback(lookback),
		logger:   o.logger,
		now:      time.Now,
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "yfinance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	GMTOffset int64  `json:"gmtoffset"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Close []*float64 `json:"close"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchHistory returns the daily closes for the query's ticker over the lookback window.
func (y *YFinance) FetchHistory(ctx context.Context, query string) StockResult {
	ticker, ok := utils.LookupTicker(query)
	if !ok {
		metrics.FetchTotal.WithLabelValues(y.Name(), string(StatusEmpty)).Inc()
		return StockResult{Status: StatusEmpty, Reason: "no ticker"}
	}

	points, err := y.history(ctx, ticker)
	r := StockResult{Ticker: ticker}
	switch {
	case err != nil:
		r.Status, r.Reason = StatusDegraded, err.Error()
		y.logger.Warn("source degraded", "source", y.Name(), "query", query, "ticker", ticker, "reason", r.Reason)
	case len(points) == 0:
		r.Status = StatusEmpty
	default:
		r.Status, r.Points = StatusOK, points
	}
	metrics.FetchTotal.WithLabelValues(y.Name(), string(r.Status)).Inc()
	return r
}

func (y *YFinance) history(ctx context.Context, ticker string) ([]models.StockPoint, error) {
	to := y.now()
	from := to.Add(-y.lookback)

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))
	params.Set("interval", "1d")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(ticker), params.Encode())

	var resp yfChartResponse
	if err := getJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w: %s", ticker, ErrUpstream, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}
	return parseYFCloses(resp.Chart.Result[0]), nil
}

// parseYFCloses converts chart timestamps and closes into calendar-dated
// points in the exchange's local time. Null closes are skipped.
func parseYFCloses(result yfChartResult) []models.StockPoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	closes := result.Indicators.Quote[0].Close
	points := make([]models.StockPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		local := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		points = append(points, models.StockPoint{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Price: decimal.NewFromFloat(*closes[i]),
		})
	}
	if len(points) == 0 {
		return nil
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// parseLookback turns "100d" into a duration.
func parseLookback(s string) time.Duration {
	days, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "d"))
	if err != nil || days <= 0 {
		days = 100
	}
	return time.Duration(days) * 24 * time.Hour
}
