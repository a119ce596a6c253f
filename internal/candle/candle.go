// Package candle folds irregular market ticks into fixed-duration OHLCV bars.
package candle

// Period is a candle duration in seconds.
type Period int64

const (
	Minute      Period = 60
	FiveMinutes Period = 300
	Hour        Period = 3600
)

// Candle is one fixed-duration OHLCV bar. While open it is mutated by Update;
// once the driver detects a tick past CloseTime it is appended to a History
// and never touched again.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	OpenTime  int64 // Unix seconds of the first tick
	CloseTime int64 // OpenTime + period, fixed under Update

	counter float64 // last cumulative feed counter seen
}

// New opens a candle from its first tick. The volume argument is the feed's
// cumulative session counter, stored as-is so later deltas line up.
func New(price, volume float64, ts int64, period Period) *Candle {
	return &Candle{
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    volume,
		OpenTime:  ts,
		CloseTime: ts + int64(period),
		counter:   volume,
	}
}

// Update folds one tick into the open candle. The incoming volume is the
// feed's cumulative counter; only the delta against the last seen counter is
// added, so Volume never decreases mid-candle. A negative delta means the
// counter reset (new session); the candle resynchronizes to the new counter
// without shrinking its stored volume.
func (c *Candle) Update(price, volume float64, ts int64) {
	if price < c.Low {
		c.Low = price
	}
	if price > c.High {
		c.High = price
	}
	c.Close = price

	if delta := volume - c.counter; delta > 0 {
		c.Volume += delta
		c.counter = volume
	} else if delta < 0 {
		c.counter = volume
	}
}

// Due reports whether a tick at the given time should close this candle.
// The boundary is strict: a tick exactly at CloseTime still belongs here.
func (c *Candle) Due(ts int64) bool {
	return ts > c.CloseTime
}

// Row returns the tabular form consumed by the feature pipeline.
func (c *Candle) Row() Row {
	return Row{
		OpenTime:  c.OpenTime,
		CloseTime: c.CloseTime,
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
	}
}

// Row is one closed candle in flat tabular form.
type Row struct {
	OpenTime  int64
	CloseTime int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// History is the append-only sequence of closed candles, owned by the
// strategy driver. Only the driver appends; readers get copies.
type History struct {
	closed []Candle
}

// Append archives a closed candle by value.
func (h *History) Append(c *Candle) {
	h.closed = append(h.closed, *c)
}

// Len returns the number of closed candles.
func (h *History) Len() int { return len(h.closed) }

// Last returns the most recently closed candle.
func (h *History) Last() (Candle, bool) {
	if len(h.closed) == 0 {
		return Candle{}, false
	}
	return h.closed[len(h.closed)-1], true
}

// Rows converts the whole history to tabular form in time order.
func (h *History) Rows() []Row {
	rows := make([]Row, len(h.closed))
	for i := range h.closed {
		rows[i] = h.closed[i].Row()
	}
	return rows
}
