package report

import (
	"fmt"

	"github.com/seenimoa/pulsewatch/internal/analysis/technical"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Close-price line chart, drawn with fpdf primitives
// ════════════════════════════════════════════════════════════════════

// chartBox holds the outer chart rectangle and the inner plot padding, in mm.
type chartBox struct {
	X, Y, W, H  float64
	PadLeft     float64
	PadRight    float64
	PadTop      float64
	PadBottom   float64
	GridLines   int
	AxisFontPts float64
}

func defaultChartBox(x, y, w float64) chartBox {
	return chartBox{
		X: x, Y: y, W: w, H: 55,
		PadLeft:     18,
		PadRight:    4,
		PadTop:      4,
		PadBottom:   8,
		GridLines:   4,
		AxisFontPts: 7,
	}
}

// plotArea returns the usable drawing area.
func (c chartBox) plotArea() (x, y, w, h float64) {
	return c.X + c.PadLeft, c.Y + c.PadTop,
		c.W - c.PadLeft - c.PadRight,
		c.H - c.PadTop - c.PadBottom
}

// priceRange returns min and max close, padding a flat series so the
// line sits mid-chart instead of dividing by zero.
func priceRange(points []models.StockPoint) (lo, hi float64) {
	lo, hi = points[0].Price.InexactFloat64(), points[0].Price.InexactFloat64()
	for _, p := range points[1:] {
		v := p.Price.InexactFloat64()
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

// priceChart draws a line of closes with a light horizontal grid and the
// first/last dates on the x axis, plus a moving average once the series
// covers a full window. Series shorter than two points are skipped.
func (d *document) priceChart(points []models.StockPoint) {
	if len(points) < 2 {
		return
	}
	left, _, right, bottom := d.pdf.GetMargins()
	pageW, pageH := d.pdf.GetPageSize()

	d.pdf.Ln(4)
	box := defaultChartBox(left, d.pdf.GetY(), pageW-left-right)
	if box.Y+box.H > pageH-bottom {
		d.pdf.AddPage()
		box.Y = d.pdf.GetY()
	}
	px, py, pw, ph := box.plotArea()
	lo, hi := priceRange(points)
	closes := technical.Closes(points)

	scaleX := func(i int) float64 { return px + pw*float64(i)/float64(len(points)-1) }
	scaleY := func(v float64) float64 { return py + ph - (v-lo)/(hi-lo)*ph }

	d.pdf.SetFont(fontFamily, "", box.AxisFontPts)
	d.pdf.SetTextColor(51, 51, 51)
	d.pdf.SetDrawColor(224, 224, 224)
	d.pdf.SetLineWidth(0.1)
	for i := 0; i <= box.GridLines; i++ {
		v := lo + (hi-lo)*float64(i)/float64(box.GridLines)
		y := scaleY(v)
		d.pdf.Line(px, y, px+pw, y)
		d.pdf.SetXY(box.X, y-2)
		d.pdf.CellFormat(box.PadLeft-2, 4, fmt.Sprintf("%.2f", v), "", 0, "R", false, 0, "")
	}

	d.pdf.SetDrawColor(31, 119, 180)
	d.pdf.SetLineWidth(0.4)
	for i := 1; i < len(closes); i++ {
		d.pdf.Line(scaleX(i-1), scaleY(closes[i-1]), scaleX(i), scaleY(closes[i]))
	}

	// SMA never leaves the close range, so it shares the y scale.
	if sma := technical.SMA(closes, technical.DefaultPeriod); sma != nil {
		d.pdf.SetDrawColor(255, 127, 14)
		d.pdf.SetLineWidth(0.3)
		for i := technical.DefaultPeriod; i < len(sma); i++ {
			d.pdf.Line(scaleX(i-1), scaleY(sma[i-1]), scaleX(i), scaleY(sma[i]))
		}
		d.pdf.SetXY(px, box.Y)
		d.pdf.SetTextColor(255, 127, 14)
		d.pdf.CellFormat(pw, 3, fmt.Sprintf("%d-day average", technical.DefaultPeriod), "", 0, "R", false, 0, "")
		d.pdf.SetTextColor(51, 51, 51)
	}

	axisY := py + ph + 1.5
	first := points[0].Date.Format("02 Jan 2006")
	last := points[len(points)-1].Date.Format("02 Jan 2006")
	d.pdf.SetXY(px, axisY)
	d.pdf.CellFormat(pw/2, 4, first, "", 0, "L", false, 0, "")
	d.pdf.CellFormat(pw/2, 4, last, "", 1, "R", false, 0, "")

	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetLineWidth(0.2)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetXY(left, box.Y+box.H)
}
