// Package technical computes trend lines over daily close prices.
package technical

import (
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// DefaultPeriod is the moving-average window drawn on report charts.
const DefaultPeriod = 20

// Closes extracts the close prices of points as floats.
func Closes(points []models.StockPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}

// SMA calculates Simple Moving Average for the given period.
// Entries before the first full window are zero. It returns nil when the
// series is shorter than period.
func SMA(data []float64, period int) []float64 {
	n := len(data)
	if n < period || period <= 0 {
		return nil
	}

	result := make([]float64, n)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum += data[i] - data[i-period]
		result[i] = sum / float64(period)
	}

	return result
}

// SMALatest returns the most recent SMA value, or 0 if there is none.
func SMALatest(data []float64, period int) float64 {
	vals := SMA(data, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// EMA calculates Exponential Moving Average seeded with the SMA of the
// first window. Same shape rules as SMA.
func EMA(data []float64, period int) []float64 {
	n := len(data)
	if n < period || period <= 0 {
		return nil
	}

	ema := make([]float64, n)
	k := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}

	return ema
}

// Change returns the absolute and percentage move from the first to the
// last close. pct is 0 when the first close is 0.
func Change(data []float64) (abs, pct float64) {
	if len(data) < 2 {
		return 0, 0
	}
	first, last := data[0], data[len(data)-1]
	abs = last - first
	if first != 0 {
		pct = abs / first * 100
	}
	return abs, pct
}
