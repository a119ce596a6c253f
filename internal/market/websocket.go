package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"shortbot-go/internal/metrics"
)

const defaultStreamURL = "wss://stream.binance.com:9443/stream"

// WebsocketSource consumes a trade stream in the background and serves the
// tail of its buffer to FetchRecent callers. The stream's per-trade sizes
// are accumulated into a cumulative session counter so the candle
// aggregator's volume-delta semantics hold.
type WebsocketSource struct {
	streamURL string
	log       zerolog.Logger

	mu        sync.RWMutex
	buffer    []Tick
	cumVolume float64
	maxBuffer int
}

type streamEnvelope struct {
	Stream string      `json:"stream"`
	Data   streamTrade `json:"data"`
}

type streamTrade struct {
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"` // Unix milliseconds
}

// NewWebsocketSource builds the source; Run must be started for FetchRecent
// to ever return data.
func NewWebsocketSource(streamURL string, log zerolog.Logger) *WebsocketSource {
	if streamURL == "" {
		streamURL = defaultStreamURL
	}
	return &WebsocketSource{
		streamURL: streamURL,
		log:       log,
		maxBuffer: 4096,
	}
}

// Run consumes the stream for one symbol until the context is canceled,
// reconnecting with exponential backoff.
func (w *WebsocketSource) Run(ctx context.Context, symbol string) error {
	url := fmt.Sprintf("%s?streams=%s@trade", w.streamURL, strings.ToLower(symbol))
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.consume(ctx, url, symbol); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn().Err(err).Msg("trade stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (w *WebsocketSource) consume(ctx context.Context, url, symbol string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	w.log.Info().Str("symbol", symbol).Msg("connected trade stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					w.log.Warn().Err(err).Msg("stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env streamEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			w.log.Warn().Err(err).Msg("failed to decode stream message")
			continue
		}
		px, err := strconv.ParseFloat(env.Data.Price, 64)
		if err != nil {
			w.log.Warn().Err(err).Msg("invalid price from stream")
			continue
		}
		qty, err := strconv.ParseFloat(env.Data.Quantity, 64)
		if err != nil {
			w.log.Warn().Err(err).Msg("invalid quantity from stream")
			continue
		}

		w.append(Tick{Price: px, Volume: qty, Ts: env.Data.TradeTime / 1000})
		metrics.TicksTotal.WithLabelValues(symbol).Inc()
	}
}

// append folds a raw trade into the buffer, converting per-trade size into
// the cumulative counter FetchRecent exposes.
func (w *WebsocketSource) append(t Tick) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cumVolume += t.Volume
	t.Volume = w.cumVolume
	w.buffer = append(w.buffer, t)
	if len(w.buffer) > w.maxBuffer {
		w.buffer = w.buffer[len(w.buffer)-w.maxBuffer:]
	}
}

// FetchRecent serves the most recent buffered ticks. An empty buffer is a
// fetch failure; the caller retries next interval.
func (w *WebsocketSource) FetchRecent(_ context.Context, symbol string, lookback int) ([]Tick, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.buffer) == 0 {
		return nil, fmt.Errorf("%w: no buffered ticks for %s", ErrFetch, symbol)
	}
	start := len(w.buffer) - lookback
	if start < 0 {
		start = 0
	}
	out := make([]Tick, len(w.buffer)-start)
	copy(out, w.buffer[start:])
	return out, nil
}
