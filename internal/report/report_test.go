package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func sampleStock(n int) []models.StockPoint {
	pts := make([]models.StockPoint, n)
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range pts {
		pts[i] = models.StockPoint{
			Date:  t.AddDate(0, 0, i),
			Price: decimal.NewFromFloat(240.5 + float64(i%7)),
		}
	}
	return pts
}

func sampleResults() map[string]models.QueryResult {
	return map[string]models.QueryResult{
		"Tesla": {
			Overview:    models.SentimentOverview{Positive: 2, Negative: 1, Neutral: 0, Total: 3},
			SummaryText: "Overall sentiment is predominantly positive, based on 3 total mentions.",
			Articles: []models.ContentItem{
				{Source: models.SourceNews, Title: "Tesla beats estimates", Description: "Record deliveries", Sentiment: models.Positive, Category: models.CategoryCompanyNews, Reason: "beat estimates"},
			},
			TwitterPosts: []models.ContentItem{
				{Source: models.SourceMicroblog, Text: "Service center was awful", Description: "Service center was awful", Sentiment: models.Negative, Category: models.CategoryCustomerService, Reason: "poor service"},
			},
			YouTubePosts: []models.ContentItem{
				{Source: models.SourceVideo, Title: "Model Y review", Description: "Great value", Sentiment: models.Positive, Category: models.CategoryPrice, Reason: "good value"},
			},
			StockTrends: sampleStock(30),
		},
		"Ford": {
			Overview:     models.SentimentOverview{},
			SummaryText:  "No public sentiment data could be found.",
			Articles:     []models.ContentItem{},
			TwitterPosts: []models.ContentItem{},
			YouTubePosts: []models.ContentItem{},
		},
	}
}

func plainRenderer() *Renderer {
	cfg := DefaultConfig()
	cfg.Compress = false
	cfg.PriceChart = false
	return NewRenderer(cfg)
}

// ════════════════════════════════════════════════════════════════════
// PDF renderer
// ════════════════════════════════════════════════════════════════════

func TestWrite_PDFHeader(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(DefaultConfig())
	if err := r.Write(&buf, []string{"Tesla", "Ford"}, "Upbeat overall.", sampleResults()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:8])
	}
}

func TestBuild_OnePagePerQuery(t *testing.T) {
	r := plainRenderer()

	tests := []struct {
		name    string
		queries []string
		want    int
	}{
		{"single", []string{"Tesla"}, 2},
		{"two", []string{"Tesla", "Ford"}, 3},
		{"missing result still gets a title page", []string{"Tesla", "Nokia"}, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := r.build(tc.queries, "summary", sampleResults())
			if got := doc.PageCount(); got != tc.want {
				t.Errorf("PageCount = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := plainRenderer().Write(&buf, []string{"Tesla", "Ford"}, "Upbeat overall.", sampleResults()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Business Intelligence Report:",
		"Executive Summary",
		"Upbeat overall.",
		"Detailed Analysis: Tesla",
		"Detailed Analysis: Ford",
		"Sentiment Analysis",
		"Percentage",
		"66.7%",
		"33.3%",
		"Key Positive Mentions",
		"Key Negative Mentions",
		"Reason: beat estimates",
		"Recent Media Mentions",
		"News Articles",
		"Twitter Posts",
		"YouTube Videos",
		"Stock Performance",
		stockNote,
		noMentions,
		noPosts,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PDF missing %q", want)
		}
	}
}

func TestWrite_ZeroTotalPercentages(t *testing.T) {
	var buf bytes.Buffer
	results := map[string]models.QueryResult{"Ford": sampleResults()["Ford"]}
	if err := plainRenderer().Write(&buf, []string{"Ford"}, "none", results); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "(0.0%)") != 3 {
		t.Errorf("expected three 0.0%% cells")
	}
	if strings.Contains(buf.String(), "Stock Performance") {
		t.Error("stock section should be absent without a series")
	}
}

func TestWrite_WithPriceChart(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(Config{PriceChart: true})
	if err := r.Write(&buf, []string{"Tesla"}, "s", sampleResults()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("invalid PDF")
	}
}

func TestWrite_PriceChartAverage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compress = false
	results := sampleResults()

	var buf bytes.Buffer
	if err := NewRenderer(cfg).Write(&buf, []string{"Tesla"}, "s", results); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("20-day average")) {
		t.Error("30-point series should carry the moving-average legend")
	}

	short := results["Tesla"]
	short.StockTrends = sampleStock(10)
	results["Tesla"] = short
	buf.Reset()
	if err := NewRenderer(cfg).Write(&buf, []string{"Tesla"}, "s", results); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte("20-day average")) {
		t.Error("10-point series is too short for a 20-day average")
	}
}

func TestRender_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "abc.pdf")
	if err := plainRenderer().Render(path, []string{"Tesla"}, "s", sampleResults()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("file is not a PDF")
	}
}

func TestRender_NoOutputPath(t *testing.T) {
	if err := plainRenderer().Render("", []string{"Tesla"}, "s", nil); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(Config{})
	if r.cfg.PageSize != "A4" || r.cfg.Margin != 12.7 || r.cfg.Author != "pulsewatch" {
		t.Errorf("defaults not applied: %+v", r.cfg)
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestPriceRange(t *testing.T) {
	lo, hi := priceRange(sampleStock(10))
	if lo != 240.5 || hi != 246.5 {
		t.Errorf("range = %v..%v", lo, hi)
	}

	flat := []models.StockPoint{{Price: decimal.NewFromInt(10)}, {Price: decimal.NewFromInt(10)}}
	lo, hi = priceRange(flat)
	if lo >= hi {
		t.Errorf("flat series must be padded, got %v..%v", lo, hi)
	}
}

func TestPlotArea(t *testing.T) {
	c := defaultChartBox(10, 20, 180)
	x, y, w, h := c.plotArea()
	if x != 28 || y != 24 || w != 158 || h != 43 {
		t.Errorf("plotArea = %v %v %v %v", x, y, w, h)
	}
}

func TestDescriptionOf(t *testing.T) {
	it := models.ContentItem{Text: "tweet body"}
	if got := descriptionOf(it); got != "tweet body..." {
		t.Errorf("got %q", got)
	}
	if got := descriptionOf(models.ContentItem{}); got != noDescription+"..." {
		t.Errorf("got %q", got)
	}
	long := models.ContentItem{Description: strings.Repeat("x", 400)}
	if got := descriptionOf(long); len(got) != descriptionLen+3 {
		t.Errorf("len = %d", len(got))
	}
}

func TestSourceLabel(t *testing.T) {
	cases := map[models.Source]string{
		models.SourceNews:      "News",
		models.SourceMicroblog: "Twitter",
		models.SourceVideo:     "YouTube",
	}
	for src, want := range cases {
		if got := sourceLabel(src); got != want {
			t.Errorf("sourceLabel(%q) = %q", src, got)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Text renderer
// ════════════════════════════════════════════════════════════════════

func TestGenerateText(t *testing.T) {
	url := "/download/abc.pdf"
	rep := &models.AnalysisReport{
		Queries:   []string{"Tesla", "Ford"},
		Results:   sampleResults(),
		Summary:   "Upbeat overall.",
		ReportURL: &url,
	}
	out := GenerateText(rep)
	for _, want := range []string{
		"Business Intelligence Report: Tesla, Ford",
		"EXECUTIVE SUMMARY",
		"Upbeat overall.",
		"■ TESLA",
		"Positive: 2 | Neutral: 0 | Negative: 1 | Total: 3",
		"[negative] Twitter: Service center was awful (poor service)",
		"No public sentiment data could be found.",
		"Close: 240.50 (01 Jan) → 241.50 (30 Jan) +0.42%",
		"20-day average: 243.55 (EMA 243.28)",
		"Report: /download/abc.pdf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestGenerateText_Nil(t *testing.T) {
	if GenerateText(nil) != "" {
		t.Error("nil report should render empty")
	}
}
