package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the kind of fetcher that produced a ContentItem.
type Source string

const (
	SourceNews      Source = "news"
	SourceMicroblog Source = "microblog"
	SourceVideo     Source = "video"
)

// Sentiment is the polarity label attached to every ContentItem.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case Positive, Negative, Neutral:
		return true
	}
	return false
}

// Category is the topic bucket chosen by the classifier.
type Category string

const (
	CategoryProductQuality  Category = "Product Quality"
	CategoryCustomerService Category = "Customer Service"
	CategoryDelivery        Category = "Delivery & Shipping"
	CategoryPrice           Category = "Price & Value"
	CategoryWebsiteApp      Category = "Website & App Experience"
	CategoryCompanyNews     Category = "Company News & Financials"
	CategoryOther           Category = "Other"
)

// Categories is the closed set of topic buckets, in prompt order.
var Categories = []Category{
	CategoryProductQuality,
	CategoryCustomerService,
	CategoryDelivery,
	CategoryPrice,
	CategoryWebsiteApp,
	CategoryCompanyNews,
	CategoryOther,
}

// ParseCategory maps free text onto the closed category set, ignoring case.
// Unknown values map to CategoryOther with ok=false.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return CategoryOther, false
}

// SentimentTriple is the classifier's verdict for one piece of text.
type SentimentTriple struct {
	Label    Sentiment `json:"sentiment"`
	Category Category  `json:"category"`
	Reason   string    `json:"reason"`
}

// ContentItem is a normalized news article, microblog post or video.
type ContentItem struct {
	Source      Source     `json:"source"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	Text        string     `json:"text,omitempty"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	Sentiment Sentiment `json:"sentiment"`
	Category  Category  `json:"category"`
	Reason    string    `json:"reason"`
}

// PrimaryText is the text the classifier sees: description, else the post body.
func (c ContentItem) PrimaryText() string {
	if strings.TrimSpace(c.Description) != "" {
		return c.Description
	}
	return c.Text
}

// Annotate copies a classifier verdict onto the item.
func (c *ContentItem) Annotate(t SentimentTriple) {
	c.Sentiment = t.Label
	c.Category = t.Category
	c.Reason = t.Reason
}

// StockPoint is one daily close. Prices are kept as decimals so the JSON
// payload carries exactly what the market API returned.
type StockPoint struct {
	Date  time.Time
	Price decimal.Decimal
}

type stockPointJSON struct {
	Date  string      `json:"date"`
	Price json.Number `json:"price"`
}

// MarshalJSON renders {"date":"YYYY-MM-DD","price":<number>}.
func (p StockPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(stockPointJSON{
		Date:  p.Date.Format(time.DateOnly),
		Price: json.Number(p.Price.String()),
	})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (p *StockPoint) UnmarshalJSON(data []byte) error {
	var raw stockPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(time.DateOnly, raw.Date)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(raw.Price.String())
	if err != nil {
		return err
	}
	p.Date, p.Price = d, price
	return nil
}

// SentimentOverview counts labels across one query's items.
type SentimentOverview struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Total    int `json:"total"`
}

// Count tallies one label. Anything unrecognised counts as neutral.
func (o *SentimentOverview) Count(s Sentiment) {
	switch s {
	case Positive:
		o.Positive++
	case Negative:
		o.Negative++
	default:
		o.Neutral++
	}
	o.Total++
}

// QueryResult is everything computed for one query.
type QueryResult struct {
	Overview     SentimentOverview `json:"sentiment_overview"`
	SummaryText  string            `json:"sentiment_summary_text"`
	Articles     []ContentItem     `json:"articles"`
	TwitterPosts []ContentItem     `json:"twitter_posts"`
	YouTubePosts []ContentItem     `json:"youtube_posts"`
	StockTrends  []StockPoint      `json:"stock_trends"`
}

// HasData reports whether the query produced any mentions or a price series.
func (r QueryResult) HasData() bool {
	return r.Overview.Total > 0 || len(r.StockTrends) > 0
}

// Items returns the three source buckets concatenated in news, microblog, video order.
func (r QueryResult) Items() []ContentItem {
	out := make([]ContentItem, 0, len(r.Articles)+len(r.TwitterPosts)+len(r.YouTubePosts))
	out = append(out, r.Articles...)
	out = append(out, r.TwitterPosts...)
	return append(out, r.YouTubePosts...)
}

// AnalysisReport is the outcome of one pipeline run over a list of queries.
type AnalysisReport struct {
	Queries   []string               `json:"queries"`
	Results   map[string]QueryResult `json:"results"`
	Summary   string                 `json:"summary"`
	ReportURL *string                `json:"report_url"`
}
