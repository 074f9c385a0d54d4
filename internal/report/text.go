package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/pulsewatch/internal/analysis/technical"
	"github.com/seenimoa/pulsewatch/pkg/models"
	"github.com/seenimoa/pulsewatch/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// GenerateText renders rep for a terminal.
func GenerateText(rep *models.AnalysisReport) string {
	if rep == nil {
		return ""
	}
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", reportTitle(rep.Queries)))
	sb.WriteString(line + "\n\n")

	sb.WriteString("  ■ EXECUTIVE SUMMARY\n")
	sb.WriteString(fmt.Sprintf("  %s\n", rep.Summary))
	sb.WriteString(thinLine + "\n")

	for _, q := range rep.Queries {
		res, ok := rep.Results[q]
		if !ok {
			continue
		}
		o := res.Overview
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", strings.ToUpper(q)))
		sb.WriteString(fmt.Sprintf("  %s\n", res.SummaryText))
		sb.WriteString(fmt.Sprintf("    Positive: %d | Neutral: %d | Negative: %d | Total: %d\n",
			o.Positive, o.Neutral, o.Negative, o.Total))
		sb.WriteString(fmt.Sprintf("    News: %d | Twitter: %d | YouTube: %d\n",
			len(res.Articles), len(res.TwitterPosts), len(res.YouTubePosts)))

		for _, it := range res.Items() {
			if it.Sentiment == models.Neutral || it.Sentiment == "" {
				continue
			}
			title := firstNonBlank(it.Title, it.PrimaryText(), "No title")
			sb.WriteString(fmt.Sprintf("    [%s] %s: %s (%s)\n",
				it.Sentiment, sourceLabel(it.Source), utils.Ellipsize(title, 70), it.Reason))
		}

		if n := len(res.StockTrends); n > 0 {
			first, last := res.StockTrends[0], res.StockTrends[n-1]
			closes := technical.Closes(res.StockTrends)
			_, pct := technical.Change(closes)
			sb.WriteString(fmt.Sprintf("    Close: %s (%s) → %s (%s) %+.2f%%\n",
				first.Price.StringFixed(2), first.Date.Format("02 Jan"),
				last.Price.StringFixed(2), last.Date.Format("02 Jan"), pct))
			if avg := technical.SMALatest(closes, technical.DefaultPeriod); avg != 0 {
				ema := technical.EMA(closes, technical.DefaultPeriod)
				sb.WriteString(fmt.Sprintf("    %d-day average: %.2f (EMA %.2f)\n",
					technical.DefaultPeriod, avg, ema[len(ema)-1]))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	if rep.ReportURL != nil {
		sb.WriteString(fmt.Sprintf("\n  Report: %s\n", *rep.ReportURL))
	}
	sb.WriteString(line + "\n")
	return sb.String()
}

// WriteText writes GenerateText(rep) to w.
func WriteText(w io.Writer, rep *models.AnalysisReport) error {
	_, err := io.WriteString(w, GenerateText(rep))
	return err
}
