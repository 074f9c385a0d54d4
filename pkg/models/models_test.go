package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// ── ContentItem ──

func TestPrimaryTextPrefersDescription(t *testing.T) {
	tests := []struct {
		name string
		item ContentItem
		want string
	}{
		{"description only", ContentItem{Description: "desc"}, "desc"},
		{"text only", ContentItem{Text: "tweet body"}, "tweet body"},
		{"both", ContentItem{Description: "desc", Text: "tweet body"}, "desc"},
		{"blank description", ContentItem{Description: "   ", Text: "tweet body"}, "tweet body"},
		{"neither", ContentItem{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.PrimaryText(); got != tc.want {
				t.Errorf("PrimaryText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	item := ContentItem{Source: SourceNews, Title: "t"}
	item.Annotate(SentimentTriple{Label: Positive, Category: CategoryCompanyNews, Reason: "beat estimates"})
	if item.Sentiment != Positive || item.Category != CategoryCompanyNews || item.Reason != "beat estimates" {
		t.Errorf("Annotate: got %+v", item)
	}
}

func TestContentItemJSONKeys(t *testing.T) {
	item := ContentItem{Source: SourceMicroblog, Description: "d", Text: "d", URL: "u",
		Sentiment: Neutral, Category: CategoryOther, Reason: "N/A"}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, key := range []string{`"source":"microblog"`, `"sentiment":"neutral"`, `"category":"Other"`, `"reason":"N/A"`} {
		if !strings.Contains(s, key) {
			t.Errorf("missing %s in %s", key, s)
		}
	}
	if strings.Contains(s, "published_at") {
		t.Errorf("published_at should be omitted when unset: %s", s)
	}
}

// ── Category / Sentiment ──

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"Delivery & Shipping", CategoryDelivery, true},
		{"  website & app experience ", CategoryWebsiteApp, true},
		{"Other", CategoryOther, true},
		{"Weather", CategoryOther, false},
		{"", CategoryOther, false},
	}
	for _, tc := range tests {
		got, ok := ParseCategory(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseCategory(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestCategoriesClosedSet(t *testing.T) {
	if len(Categories) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(Categories))
	}
	if Categories[len(Categories)-1] != CategoryOther {
		t.Error("Other should be the last category")
	}
}

func TestSentimentValid(t *testing.T) {
	for _, s := range []Sentiment{Positive, Negative, Neutral} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Sentiment("mixed").Valid() {
		t.Error("mixed should not be valid")
	}
}

// ── SentimentOverview ──

func TestOverviewCount(t *testing.T) {
	var o SentimentOverview
	for _, s := range []Sentiment{Positive, Positive, Negative, Neutral, Sentiment("")} {
		o.Count(s)
	}
	want := SentimentOverview{Positive: 2, Negative: 1, Neutral: 2, Total: 5}
	if o != want {
		t.Errorf("got %+v, want %+v", o, want)
	}
	if o.Total != o.Positive+o.Negative+o.Neutral {
		t.Error("total must equal the sum of the three counts")
	}
}

// ── StockPoint ──

func TestStockPointJSON(t *testing.T) {
	p := StockPoint{
		Date:  time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
		Price: decimal.RequireFromString("189.87"),
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(data), `{"date":"2024-05-17","price":189.87}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var back StockPoint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Price.Equal(p.Price) || !back.Date.Equal(p.Date) {
		t.Errorf("decoded %+v, want %+v", back, p)
	}
}

// ── QueryResult ──

func TestQueryResultNullStockTrends(t *testing.T) {
	r := QueryResult{Articles: []ContentItem{}, TwitterPosts: []ContentItem{}, YouTubePosts: []ContentItem{}}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"stock_trends":null`) {
		t.Errorf("absent stock series should encode as null: %s", s)
	}
	if !strings.Contains(s, `"articles":[]`) {
		t.Errorf("empty bucket should encode as []: %s", s)
	}
}

func TestQueryResultHasData(t *testing.T) {
	if (QueryResult{}).HasData() {
		t.Error("zero result should have no data")
	}
	if !(QueryResult{Overview: SentimentOverview{Neutral: 1, Total: 1}}).HasData() {
		t.Error("result with mentions should have data")
	}
	if !(QueryResult{StockTrends: []StockPoint{{}}}).HasData() {
		t.Error("result with stock series should have data")
	}
}

func TestQueryResultItemsOrder(t *testing.T) {
	r := QueryResult{
		Articles:     []ContentItem{{Source: SourceNews}},
		TwitterPosts: []ContentItem{{Source: SourceMicroblog}},
		YouTubePosts: []ContentItem{{Source: SourceVideo}},
	}
	items := r.Items()
	want := []Source{SourceNews, SourceMicroblog, SourceVideo}
	for i, it := range items {
		if it.Source != want[i] {
			t.Errorf("item %d: got %q, want %q", i, it.Source, want[i])
		}
	}
}
