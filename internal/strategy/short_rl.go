package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shortbot-go/internal/candle"
	"shortbot-go/internal/feature"
	"shortbot-go/internal/journal"
	"shortbot-go/internal/ledger"
	"shortbot-go/internal/metrics"
	"shortbot-go/internal/policy"
)

// ShortRL replays a trained policy against the live tick stream. It owns the
// open candle, the closed-candle table, and the ledger; all mutation happens
// on the single decision-loop goroutine.
type ShortRL struct {
	symbol     string
	windowSize int
	period     candle.Period

	live    *candle.Candle
	history candle.History
	rows    []candle.Row // seeded bootstrap rows + every closed candle

	book    *ledger.Ledger
	scaler  *feature.Scaler
	policy  policy.Policy
	journal journal.Recorder
	log     zerolog.Logger

	lastDecision ledger.Decision
}

// NewShortRL validates dependencies and builds the driver in its
// uninitialized state; the first Run batch seeds history.
func NewShortRL(deps Deps) (*ShortRL, error) {
	if deps.Scaler == nil {
		return nil, fmt.Errorf("strategy requires a scaler")
	}
	if deps.Policy == nil {
		return nil, fmt.Errorf("strategy requires a policy")
	}
	windowSize := deps.WindowSize
	if windowSize <= 0 {
		windowSize = 15
	}
	period := candle.Period(deps.CandlePeriod)
	if period <= 0 {
		period = candle.Minute
	}
	balance := deps.InitialBalance
	if balance <= 0 {
		balance = 25000
	}
	return &ShortRL{
		symbol:       deps.Symbol,
		windowSize:   windowSize,
		period:       period,
		book:         ledger.New(balance),
		scaler:       deps.Scaler,
		policy:       deps.Policy,
		journal:      deps.Journal,
		log:          deps.Log,
		lastDecision: ledger.DecisionHold,
	}, nil
}

func (s *ShortRL) Name() string { return s.policy.Name() }

// Run consumes one tick batch. Candle-close boundaries trigger the feature
// pipeline, the policy, and the ledger; batches that stay inside the open
// candle return the previous decision unchanged.
func (s *ShortRL) Run(prices, volumes []float64, times []int64) (ledger.Decision, error) {
	if len(prices) == 0 || len(prices) != len(volumes) || len(prices) != len(times) {
		return s.lastDecision, fmt.Errorf("malformed tick batch: %d prices, %d volumes, %d times",
			len(prices), len(volumes), len(times))
	}

	if s.live == nil {
		s.seed(prices, volumes, times)
	}

	last := len(prices) - 1
	price, volume, ts := prices[last], volumes[last], times[last]
	s.live.Update(price, volume, ts)

	if !s.live.Due(ts) {
		return s.lastDecision, nil
	}

	// Close the candle, archive it, and re-anchor a fresh one at the
	// latest tick before anything can fail.
	s.rows = append(s.rows, s.live.Row())
	s.history.Append(s.live)
	metrics.CandlesClosedTotal.WithLabelValues(s.symbol).Inc()
	closedAt := s.live.CloseTime
	s.live = candle.New(price, volume, ts, s.period)

	if len(s.rows) > s.windowSize {
		s.decide(price, closedAt)
	}
	return s.lastDecision, nil
}

// seed bootstraps initial history from the first batch: one degenerate
// candle per element, ascending time, then one live candle from the latest
// tick.
func (s *ShortRL) seed(prices, volumes []float64, times []int64) {
	start := len(prices) - s.windowSize
	if start < 0 {
		start = 0
	}
	for i := start; i < len(prices); i++ {
		c := candle.New(prices[i], volumes[i], times[i], s.period)
		s.rows = append(s.rows, c.Row())
	}
	last := len(prices) - 1
	s.live = candle.New(prices[last], volumes[last], times[last], s.period)
	s.log.Info().Int("seeded", len(s.rows)).Int64("open_time", s.live.OpenTime).Msg("strategy initialized")
}

// decide runs features → scaling → window → policy → ledger for one closed
// candle. Any failure skips the decision step and leaves state unchanged.
func (s *ShortRL) decide(price float64, closedAt int64) {
	feats := feature.Compute(s.rows)
	scaled := s.scaler.Transform(feats)
	obs, err := feature.ExtractLatest(scaled, s.windowSize)
	if err != nil {
		if !errors.Is(err, feature.ErrInsufficientHistory) {
			s.log.Warn().Err(err).Msg("window extraction failed")
		}
		return
	}

	action, err := s.policy.Predict(obs)
	if err != nil {
		s.log.Warn().Err(err).Msg("policy inference failed, skipping decision")
		return
	}

	res := s.book.Apply(action, price)
	s.lastDecision = res.Decision
	metrics.DecisionsTotal.WithLabelValues(s.symbol, string(res.Decision)).Inc()

	event := s.log.Info().
		Str("decision", string(res.Decision)).
		Float64("price", price).
		Float64("portfolio", s.book.PortfolioValue(price))
	if res.Reward != 0 {
		event = event.Float64("reward", res.Reward)
	}
	event.Msg("candle closed, decision made")

	if s.journal != nil {
		s.journal.Record(journal.Entry{
			Ts:             time.Unix(closedAt, 0).UTC(),
			Decision:       res.Decision,
			Price:          price,
			PortfolioValue: s.book.PortfolioValue(price),
			Reward:         res.Reward,
		})
	}
}

// MakeDecision feeds an observation straight through the policy and ledger.
// A policy failure leaves state untouched and returns the previous label.
func (s *ShortRL) MakeDecision(obs []float32, price float64) ledger.Decision {
	action, err := s.policy.Predict(obs)
	if err != nil {
		s.log.Warn().Err(err).Msg("policy inference failed")
		return s.lastDecision
	}
	res := s.book.Apply(action, price)
	s.lastDecision = res.Decision
	return res.Decision
}

// PortfolioValue marks the account at the given price.
func (s *ShortRL) PortfolioValue(price float64) float64 {
	return s.book.PortfolioValue(price)
}

// Ledger exposes the account for inspection.
func (s *ShortRL) Ledger() *ledger.Ledger { return s.book }

// ClosedCandles reports how many candles have been archived.
func (s *ShortRL) ClosedCandles() int { return s.history.Len() }
