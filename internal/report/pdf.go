package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/seenimoa/pulsewatch/pkg/models"
	"github.com/seenimoa/pulsewatch/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// PDF layout
// ════════════════════════════════════════════════════════════════════

const (
	fontFamily = "Helvetica"

	sampleCount       = 3
	sampleTitleLen    = 100
	mentionTitleLen   = 120
	descriptionLen    = 150
	mentionIndent     = 12.0
	bulletIndent      = 7.0
	lineHeight        = 5.0
	smallLineHeight   = 4.5
	tableRowHeight    = 7.0
	noMentions        = "No relevant mentions found."
	noPosts           = "No recent posts found."
	noDescription     = "No description available."
	stockNote         = "Stock trend data is available on the main dashboard."
	tableColSentiment = 50.8
	tableColCount     = 38.1
	tableColPercent   = 38.1
)

// bucket is one per-source section under "Recent Media Mentions".
type bucket struct {
	heading string
	label   string
	items   func(models.QueryResult) []models.ContentItem
}

var mediaBuckets = []bucket{
	{"News Articles", "News", func(r models.QueryResult) []models.ContentItem { return r.Articles }},
	{"Twitter Posts", "Twitter", func(r models.QueryResult) []models.ContentItem { return r.TwitterPosts }},
	{"YouTube Videos", "YouTube", func(r models.QueryResult) []models.ContentItem { return r.YouTubePosts }},
}

func sourceLabel(s models.Source) string {
	switch s {
	case models.SourceMicroblog:
		return "Twitter"
	case models.SourceVideo:
		return "YouTube"
	default:
		return "News"
	}
}

func reportTitle(queries []string) string {
	return "Business Intelligence Report: " + strings.Join(queries, ", ")
}

// document wraps fpdf with the text styles used in the report. Text goes
// through tr so UTF-8 input maps onto the core fonts' cp1252 encoding.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	cfg Config
}

func (d *document) layout(queries []string, summary string, results map[string]models.QueryResult) {
	d.pdf.AddPage()
	d.title(reportTitle(queries))
	d.h2("Executive Summary")
	d.body(summary)

	for _, q := range queries {
		d.pdf.AddPage()
		d.title("Detailed Analysis: " + q)
		res, ok := results[q]
		if !ok {
			continue
		}
		d.query(res)
	}
}

func (d *document) query(res models.QueryResult) {
	d.h2("Sentiment Analysis")
	d.italic(res.SummaryText)
	d.pdf.Ln(5)
	d.sentimentTable(res.Overview)
	d.pdf.Ln(8)

	all := res.Items()
	d.samples(all, models.Positive, "Key Positive Mentions")
	d.samples(all, models.Negative, "Key Negative Mentions")

	d.h2("Recent Media Mentions")
	for _, b := range mediaBuckets {
		d.mentions(b, b.items(res))
	}

	if len(res.StockTrends) > 0 {
		d.h2("Stock Performance")
		d.body(stockNote)
		if d.cfg.PriceChart {
			d.priceChart(res.StockTrends)
		}
	}
}

// sentimentTable draws the Sentiment/Count/Percentage grid. A zero total is
// treated as one so every percentage renders as 0.0%.
func (d *document) sentimentTable(o models.SentimentOverview) {
	total := o.Total
	if total == 0 {
		total = 1
	}
	pct := func(n int) string { return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100) }

	width := tableColSentiment + tableColCount + tableColPercent
	left, _, right, _ := d.pdf.GetMargins()
	pageW, _ := d.pdf.GetPageSize()
	x := left + (pageW-left-right-width)/2

	d.pdf.SetFont(fontFamily, "B", 10)
	d.pdf.SetFillColor(128, 128, 128)
	d.pdf.SetTextColor(245, 245, 245)
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetX(x)
	d.pdf.CellFormat(tableColSentiment, tableRowHeight, "Sentiment", "1", 0, "C", true, 0, "")
	d.pdf.CellFormat(tableColCount, tableRowHeight, "Count", "1", 0, "C", true, 0, "")
	d.pdf.CellFormat(tableColPercent, tableRowHeight, "Percentage", "1", 1, "C", true, 0, "")

	d.pdf.SetFont(fontFamily, "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	rows := []struct {
		label string
		n     int
	}{
		{"Positive", o.Positive},
		{"Neutral", o.Neutral},
		{"Negative", o.Negative},
	}
	for _, row := range rows {
		d.pdf.SetX(x)
		d.pdf.CellFormat(tableColSentiment, tableRowHeight, row.label, "1", 0, "C", false, 0, "")
		d.pdf.CellFormat(tableColCount, tableRowHeight, fmt.Sprint(row.n), "1", 0, "C", false, 0, "")
		d.pdf.CellFormat(tableColPercent, tableRowHeight, pct(row.n), "1", 1, "C", false, 0, "")
	}
}

func (d *document) samples(all []models.ContentItem, label models.Sentiment, heading string) {
	d.h3(heading)
	n := 0
	for _, it := range all {
		if it.Sentiment != label {
			continue
		}
		title := firstNonBlank(it.Title, it.Description, "No title")
		d.mention(fmt.Sprintf("• [%s] %s...", sourceLabel(it.Source), utils.Truncate(title, sampleTitleLen)))
		reason := it.Reason
		if reason == "" {
			reason = "N/A"
		}
		d.mentionReason("Reason: " + reason)
		d.description(descriptionOf(it))
		if n++; n == sampleCount {
			break
		}
	}
	if n == 0 {
		d.body(noMentions)
	}
}

func (d *document) mentions(b bucket, items []models.ContentItem) {
	d.h3(b.heading)
	if len(items) == 0 {
		d.body(noPosts)
	}
	for i, it := range items {
		if i == sampleCount {
			break
		}
		title := firstNonBlank(it.Title, "No Title")
		d.bullet(fmt.Sprintf("• [%s] %s...", b.label, utils.Truncate(title, mentionTitleLen)))
		d.description(descriptionOf(it))
	}
	d.pdf.Ln(2.5)
}

// ── Text styles ──

func (d *document) title(s string) {
	d.pdf.SetFont(fontFamily, "B", 22)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, 10, d.tr(s), "", "C", false)
	d.pdf.Ln(7)
}

func (d *document) h2(s string) {
	d.pdf.Ln(5)
	d.pdf.SetFont(fontFamily, "B", 16)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, 8, d.tr(s), "", "L", false)
	left, _, right, _ := d.pdf.GetMargins()
	pageW, _ := d.pdf.GetPageSize()
	y := d.pdf.GetY() + 1
	d.pdf.SetLineWidth(0.3)
	d.pdf.Line(left, y, pageW-right, y)
	d.pdf.Ln(4)
}

func (d *document) h3(s string) {
	d.pdf.Ln(3)
	d.pdf.SetFont(fontFamily, "B", 12)
	d.pdf.SetTextColor(0, 0, 139)
	d.pdf.MultiCell(0, 6, d.tr(s), "", "L", false)
	d.pdf.Ln(1)
}

func (d *document) body(s string) {
	d.pdf.SetFont(fontFamily, "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, lineHeight, d.tr(s), "", "L", false)
}

func (d *document) italic(s string) {
	d.pdf.SetFont(fontFamily, "I", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, lineHeight, d.tr(s), "", "L", false)
}

func (d *document) bullet(s string) {
	d.indented(bulletIndent, func() {
		d.pdf.SetFont(fontFamily, "", 10)
		d.pdf.SetTextColor(0, 0, 0)
		d.pdf.MultiCell(0, lineHeight, d.tr(s), "", "L", false)
	})
}

func (d *document) mention(s string) {
	d.indented(mentionIndent, func() {
		d.pdf.SetFont(fontFamily, "", 10)
		d.pdf.SetTextColor(85, 85, 85)
		d.pdf.MultiCell(0, lineHeight, d.tr(s), "", "L", false)
	})
}

func (d *document) mentionReason(s string) {
	d.indented(mentionIndent+3, func() {
		d.pdf.SetFont(fontFamily, "I", 10)
		d.pdf.SetTextColor(85, 85, 85)
		d.pdf.MultiCell(0, lineHeight, d.tr(s), "", "L", false)
	})
}

func (d *document) description(s string) {
	d.indented(mentionIndent+3, func() {
		d.pdf.SetFont(fontFamily, "I", 9)
		d.pdf.SetTextColor(102, 102, 102)
		d.pdf.MultiCell(0, smallLineHeight, d.tr(s), "", "L", false)
	})
	d.pdf.Ln(2)
}

// indented runs fn with the left margin moved right by dx.
func (d *document) indented(dx float64, fn func()) {
	left, top, right, _ := d.pdf.GetMargins()
	d.pdf.SetMargins(left+dx, top, right)
	d.pdf.SetX(left + dx)
	fn()
	d.pdf.SetMargins(left, top, right)
	d.pdf.SetX(left)
}

func descriptionOf(it models.ContentItem) string {
	desc := it.PrimaryText()
	if strings.TrimSpace(desc) == "" {
		desc = noDescription
	}
	return utils.Truncate(desc, descriptionLen) + "..."
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
