package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const defaultRestTimeout = 10 * time.Second

// RestSource polls a broker price-history endpoint over HTTP. The endpoint
// returns recent candles; their closes become the tick batch the strategy
// consumes.
type RestSource struct {
	baseURL string
	token   string
	client  *http.Client
	log     zerolog.Logger
}

type priceHistoryResponse struct {
	Candles []priceHistoryCandle `json:"candles"`
	Symbol  string               `json:"symbol"`
	Empty   bool                 `json:"empty"`
}

type priceHistoryCandle struct {
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
	Datetime int64   `json:"datetime"` // Unix milliseconds
}

// NewRestSource builds the poller. An empty timeout gets a sane default.
func NewRestSource(baseURL, token string, timeout time.Duration, log zerolog.Logger) *RestSource {
	if timeout <= 0 {
		timeout = defaultRestTimeout
	}
	return &RestSource{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchRecent requests the latest candles and maps them to ascending ticks.
// Every failure is wrapped in ErrFetch so the driver can retry untouched.
func (r *RestSource) FetchRecent(ctx context.Context, symbol string, lookback int) ([]Tick, error) {
	endpoint := fmt.Sprintf("%s/v1/pricehistory?symbol=%s&lookback=%d",
		r.baseURL, url.QueryEscape(symbol), lookback)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, symbol, resp.StatusCode)
	}

	var payload priceHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFetch, err)
	}
	if payload.Empty || len(payload.Candles) == 0 {
		return nil, fmt.Errorf("%w: no price data for %s", ErrFetch, symbol)
	}

	ticks := make([]Tick, 0, len(payload.Candles))
	for _, c := range payload.Candles {
		ticks = append(ticks, Tick{
			Price:  c.Close,
			Volume: c.Volume,
			Ts:     c.Datetime / 1000,
		})
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Ts < ticks[j].Ts })

	if len(ticks) > lookback {
		ticks = ticks[len(ticks)-lookback:]
	}
	return ticks, nil
}
