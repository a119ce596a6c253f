package feature

import (
	"math"
	"testing"

	"shortbot-go/internal/candle"
)

func makeRows(closes []float64) []candle.Row {
	rows := make([]candle.Row, len(closes))
	for i, c := range closes {
		rows[i] = candle.Row{
			OpenTime:  int64(i) * 60,
			CloseTime: int64(i)*60 + 60,
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000 + float64(i)*10,
		}
	}
	return rows
}

func TestComputePreservesRowCount(t *testing.T) {
	closes := make([]float64, 8)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out := Compute(makeRows(closes))
	if len(out) != 8 {
		t.Fatalf("expected 8 rows out for 8 in, got %d", len(out))
	}
}

func TestShortHistoryIsZeroFilledNotDropped(t *testing.T) {
	// Fewer rows than every indicator lookback.
	out := Compute(makeRows([]float64{100, 101, 102}))
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	for i, r := range out {
		if r.Velocity != 0 || r.Acceleration != 0 {
			t.Fatalf("row %d: velocity/acceleration should be zero-filled, got %v/%v", i, r.Velocity, r.Acceleration)
		}
		if math.IsNaN(r.RSI) || math.IsNaN(r.CCI) || math.IsNaN(r.ADX) || math.IsNaN(r.MACD) {
			t.Fatalf("row %d: NaN leaked into output: %+v", i, r)
		}
	}
	if out[0].RSI != 0 {
		t.Fatalf("first row RSI must be zero-filled, got %v", out[0].RSI)
	}
}

func TestRSIRespondsToDirection(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	rowsUp := Compute(makeRows(up))
	if got := rowsUp[len(rowsUp)-1].RSI; got != 100 {
		t.Fatalf("monotone gains should give RSI 100, got %v", got)
	}

	down := make([]float64, 30)
	for i := range down {
		down[i] = 200 - float64(i)
	}
	rowsDown := Compute(makeRows(down))
	if got := rowsDown[len(rowsDown)-1].RSI; got != 0 {
		t.Fatalf("monotone losses should give RSI 0, got %v", got)
	}
}

func TestMACDSignOnTrend(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	out := Compute(makeRows(closes))
	last := out[len(out)-1]
	if last.MACD <= 0 {
		t.Fatalf("uptrend should give positive MACD, got %v", last.MACD)
	}
	if last.Signal <= 0 {
		t.Fatalf("uptrend should give positive signal line, got %v", last.Signal)
	}
}

func TestCCIFlatSeriesIsZero(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	out := Compute(makeRows(closes))
	for i, r := range out {
		// High/low spread is constant so typical price never deviates.
		if r.CCI != 0 {
			t.Fatalf("row %d: flat series should give zero CCI, got %v", i, r.CCI)
		}
	}
}

func TestADXSeedsAtFirstDefinedDX(t *testing.T) {
	// Two-candle uptrend: the first row has no directional movement so DX is
	// undefined and ADX stays zero. The second row is all plus-directional
	// (minusDI 0), so DX is exactly 100 and the recursion must start there
	// rather than being diluted by a zero seed.
	out := Compute(makeRows([]float64{100, 101}))
	if out[0].ADX != 0 {
		t.Fatalf("ADX before the first defined DX must be zero, got %v", out[0].ADX)
	}
	if math.Abs(out[1].ADX-100) > 1e-9 {
		t.Fatalf("expected ADX seeded at DX=100, got %v", out[1].ADX)
	}
}

func TestVelocityLaggedDifference(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100 + float64(i) // +1 per candle
	}
	out := Compute(makeRows(closes))

	if out[velocityPeriod-1].Velocity != 0 {
		t.Fatalf("velocity before lookback must be zero")
	}
	got := out[velocityPeriod].Velocity
	if math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("expected velocity 1.0 on unit ramp, got %v", got)
	}
	// Constant velocity means zero acceleration once both lookbacks fill.
	if acc := out[2*velocityPeriod].Acceleration; math.Abs(acc) > 1e-12 {
		t.Fatalf("expected zero acceleration on linear ramp, got %v", acc)
	}
}

func TestNoLookAhead(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/3)*5
	}
	base := Compute(makeRows(closes))

	// Appending future rows must not change any already computed row.
	extended := Compute(makeRows(append(append([]float64{}, closes...), 500, 1, 250)))
	for i := range base {
		if base[i] != extended[i] {
			t.Fatalf("row %d changed when future data was appended:\n  base:     %+v\n  extended: %+v", i, base[i], extended[i])
		}
	}
}
