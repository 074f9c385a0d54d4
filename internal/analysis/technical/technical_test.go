package technical

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCloses(t *testing.T) {
	pts := []models.StockPoint{
		{Price: decimal.RequireFromString("10.25")},
		{Price: decimal.NewFromInt(11)},
	}
	got := Closes(pts)
	if len(got) != 2 || got[0] != 10.25 || got[1] != 11 {
		t.Fatalf("Closes = %v", got)
	}
	if len(Closes(nil)) != 0 {
		t.Error("Closes(nil) should be empty")
	}
}

func TestSMA(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	got := SMA(data, 3)
	want := []float64{0, 0, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("SMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if v := SMALatest(data, 3); !approx(v, 4) {
		t.Errorf("SMALatest = %v, want 4", v)
	}
}

func TestSMAInsufficientData(t *testing.T) {
	if SMA([]float64{1, 2}, 3) != nil {
		t.Error("SMA should be nil for a short series")
	}
	if SMA([]float64{1, 2}, 0) != nil {
		t.Error("SMA should be nil for a zero period")
	}
	if SMALatest(nil, 20) != 0 {
		t.Error("SMALatest of nothing should be 0")
	}
}

func TestEMA(t *testing.T) {
	data := []float64{2, 4, 6, 8}
	got := EMA(data, 2)
	// seed = 3, k = 2/3
	want := []float64{0, 3, 6*2.0/3 + 3.0/3, 0}
	want[3] = 8*2.0/3 + want[2]/3
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("EMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if EMA(data, 5) != nil {
		t.Error("EMA should be nil for a short series")
	}
}

func TestEMAConstantSeries(t *testing.T) {
	data := []float64{7, 7, 7, 7, 7, 7}
	for i, v := range EMA(data, 3)[2:] {
		if !approx(v, 7) {
			t.Errorf("EMA[%d] = %v, want 7", i+2, v)
		}
	}
}

func TestChange(t *testing.T) {
	abs, pct := Change([]float64{200, 190, 250})
	if !approx(abs, 50) || !approx(pct, 25) {
		t.Errorf("Change = %v, %v; want 50, 25", abs, pct)
	}
	if abs, pct := Change([]float64{5}); abs != 0 || pct != 0 {
		t.Errorf("single point: %v, %v", abs, pct)
	}
	if _, pct := Change([]float64{0, 5}); pct != 0 {
		t.Errorf("zero base pct = %v", pct)
	}
}
