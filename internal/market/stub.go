package market

import (
	"context"
	"math"
	"sync"
)

// Stub is a deterministic synthetic tick source. Each FetchRecent call
// advances an internal clock and a slow sine-wave price so the candle
// aggregator sees boundary crossings without a live feed.
type Stub struct {
	mu        sync.Mutex
	basePrice float64
	now       int64
	step      int64
	volume    float64
	calls     int64
}

// NewStub starts the synthetic walk at the given price and Unix time.
func NewStub(basePrice float64, start int64) *Stub {
	return &Stub{
		basePrice: basePrice,
		now:       start,
		step:      5, // seconds between synthetic ticks
	}
}

// FetchRecent returns lookback ascending ticks ending at the current
// synthetic time, then advances the clock by one step.
func (s *Stub) FetchRecent(_ context.Context, _ string, lookback int) ([]Tick, error) {
	if lookback <= 0 {
		lookback = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ticks := make([]Tick, lookback)
	for i := 0; i < lookback; i++ {
		ts := s.now - int64(lookback-1-i)*s.step
		price := s.basePrice + math.Sin(float64(ts)/120)*2 + float64(s.calls)*0.01
		ticks[i] = Tick{
			Price:  price,
			Volume: s.volume + float64(i)*10,
			Ts:     ts,
		}
	}
	s.volume += float64(lookback) * 10
	s.now += s.step
	s.calls++
	return ticks, nil
}
