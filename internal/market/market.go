// Package market hosts tick sources for the live decision loop.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderRest polls an HTTP price-history endpoint.
	ProviderRest = "rest"
	// ProviderWebsocket consumes a live trade stream and serves buffered ticks.
	ProviderWebsocket = "websocket"
)

// ErrFetch wraps any failure to obtain market data. The driver catches it at
// the loop boundary, leaves state untouched, and retries next interval.
var ErrFetch = errors.New("market data fetch failed")

// Tick is one (price, volume, timestamp) observation. Volume is the feed's
// cumulative session counter, not a per-tick traded amount.
type Tick struct {
	Price  float64
	Volume float64
	Ts     int64 // Unix seconds
}

// Source produces the most recent ticks for a symbol, ascending by time.
type Source interface {
	FetchRecent(ctx context.Context, symbol string, lookback int) ([]Tick, error)
}

// Config carries provider construction parameters.
type Config struct {
	Provider     string
	BaseURL      string
	WebsocketURL string
	APIToken     string
	Timeout      time.Duration
}

// Build returns a source backed by the requested provider.
func Build(cfg Config, log zerolog.Logger) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderStub:
		return NewStub(100.0, time.Now().Unix()), nil
	case ProviderRest:
		return NewRestSource(cfg.BaseURL, cfg.APIToken, cfg.Timeout, log), nil
	case ProviderWebsocket:
		return NewWebsocketSource(cfg.WebsocketURL, log), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}
}
