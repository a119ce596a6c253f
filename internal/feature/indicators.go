// Package feature computes technical indicators over closed candles, applies
// the offline-fit scaler, and slices observation windows for the policy.
//
// Every indicator uses trailing data only. Rows whose lookback is not yet
// filled get zero values instead of being dropped, so the row count of the
// output always equals the row count of the input.
package feature

import (
	"math"

	"shortbot-go/internal/candle"
)

const (
	macdShortPeriod  = 12
	macdLongPeriod   = 26
	macdSignalPeriod = 9
	rsiPeriod        = 14
	cciPeriod        = 14
	adxPeriod        = 14
	velocityPeriod   = 20
)

// Row is one closed candle together with its derived indicator values.
type Row struct {
	OpenTime  int64
	CloseTime int64

	Close  float64
	High   float64
	Low    float64
	Volume float64

	MACD         float64
	Signal       float64
	RSI          float64
	CCI          float64
	ADX          float64
	Velocity     float64
	Acceleration float64
}

// Compute derives indicator rows from candles sorted ascending by time.
// It is deterministic and stateless across calls.
func Compute(rows []candle.Row) []Row {
	n := len(rows)
	out := make([]Row, n)
	for i, r := range rows {
		out[i] = Row{
			OpenTime:  r.OpenTime,
			CloseTime: r.CloseTime,
			Close:     r.Close,
			High:      r.High,
			Low:       r.Low,
			Volume:    r.Volume,
		}
	}
	if n == 0 {
		return out
	}

	computeMACD(out)
	computeRSI(out)
	computeCCI(out)
	computeADX(out)
	computeVelocityAcceleration(out)
	return out
}

// ema runs the recursive exponential mean (pandas ewm adjust=False) seeded
// with the first value.
func ema(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func spanAlpha(span int) float64 { return 2.0 / (float64(span) + 1.0) }

func computeMACD(rows []Row) {
	closes := make([]float64, len(rows))
	for i := range rows {
		closes[i] = rows[i].Close
	}
	emaShort := ema(closes, spanAlpha(macdShortPeriod))
	emaLong := ema(closes, spanAlpha(macdLongPeriod))

	macd := make([]float64, len(rows))
	for i := range rows {
		macd[i] = emaShort[i] - emaLong[i]
	}
	signal := ema(macd, spanAlpha(macdSignalPeriod))
	for i := range rows {
		rows[i].MACD = macd[i]
		rows[i].Signal = signal[i]
	}
}

// computeRSI uses Wilder's smoothing (alpha = 1/period) over gains and
// losses. The first row has no price change and stays zero-filled.
func computeRSI(rows []Row) {
	if len(rows) < 2 {
		return
	}
	alpha := 1.0 / float64(rsiPeriod)
	var avgGain, avgLoss float64
	for i := 1; i < len(rows); i++ {
		change := rows[i].Close - rows[i-1].Close
		gain := math.Max(change, 0)
		loss := math.Max(-change, 0)
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		switch {
		case avgLoss == 0 && avgGain == 0:
			rows[i].RSI = 0
		case avgLoss == 0:
			rows[i].RSI = 100
		default:
			rs := avgGain / avgLoss
			rows[i].RSI = 100 - 100/(1+rs)
		}
	}
}

// computeCCI measures typical-price deviation from its rolling mean, scaled
// by mean absolute deviation. Rolling windows shrink at the head rather than
// producing missing values; a zero deviation yields a zero CCI.
func computeCCI(rows []Row) {
	tp := make([]float64, len(rows))
	for i := range rows {
		tp[i] = (rows[i].High + rows[i].Low + rows[i].Close) / 3
	}
	for i := range rows {
		start := i - cciPeriod + 1
		if start < 0 {
			start = 0
		}
		window := tp[start : i+1]

		var sum float64
		for _, v := range window {
			sum += v
		}
		mean := sum / float64(len(window))

		var mad float64
		for _, v := range window {
			mad += math.Abs(v - mean)
		}
		mad /= float64(len(window))

		if mad == 0 {
			rows[i].CCI = 0
			continue
		}
		rows[i].CCI = (tp[i] - mean) / (0.015 * mad)
	}
}

// computeADX smooths true range and directional movement with Wilder's
// method, then smooths the resulting DX into ADX. DX is undefined while both
// directional indices are zero; those rows stay zero-filled and the ADX
// recursion is seeded at the first defined DX value.
func computeADX(rows []Row) {
	n := len(rows)
	alpha := 1.0 / float64(adxPeriod)

	var sTR, sDMPlus, sDMMinus, adx float64
	seeded := false
	for i := 0; i < n; i++ {
		tr := rows[i].High - rows[i].Low
		var dmPlus, dmMinus float64
		if i > 0 {
			prevClose := rows[i-1].Close
			tr = math.Max(tr, math.Max(
				math.Abs(rows[i].High-prevClose),
				math.Abs(rows[i].Low-prevClose),
			))
			upMove := rows[i].High - rows[i-1].High
			downMove := rows[i-1].Low - rows[i].Low
			if upMove > downMove {
				dmPlus = math.Max(upMove, 0)
			} else if downMove > upMove {
				dmMinus = math.Max(downMove, 0)
			}
		}

		if i == 0 {
			sTR, sDMPlus, sDMMinus = tr, dmPlus, dmMinus
		} else {
			sTR = alpha*tr + (1-alpha)*sTR
			sDMPlus = alpha*dmPlus + (1-alpha)*sDMPlus
			sDMMinus = alpha*dmMinus + (1-alpha)*sDMMinus
		}

		var plusDI, minusDI float64
		if sTR != 0 {
			plusDI = sDMPlus / sTR * 100
			minusDI = sDMMinus / sTR * 100
		}

		if sum := plusDI + minusDI; sum != 0 {
			dx := math.Abs(plusDI-minusDI) / sum * 100
			if !seeded {
				adx = dx
				seeded = true
			} else {
				adx = alpha*dx + (1-alpha)*adx
			}
		}
		if seeded {
			rows[i].ADX = adx
		}
	}
}

// computeVelocityAcceleration takes lagged differences of the close price.
// Rows without a full lookback stay zero-filled; acceleration needs two full
// lookbacks before it produces a value.
func computeVelocityAcceleration(rows []Row) {
	n := len(rows)
	period := velocityPeriod
	vel := make([]float64, n)
	hasVel := make([]bool, n)
	for i := period; i < n; i++ {
		vel[i] = (rows[i].Close - rows[i-period].Close) / float64(period)
		hasVel[i] = true
		rows[i].Velocity = vel[i]
	}
	for i := 2 * period; i < n; i++ {
		if hasVel[i] && hasVel[i-period] {
			rows[i].Acceleration = (vel[i] - vel[i-period]) / float64(period)
		}
	}
}
