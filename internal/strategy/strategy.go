// Package strategy bridges the unbounded tick stream into fixed-size
// observation windows and drives the policy and ledger on candle closes.
package strategy

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"shortbot-go/internal/feature"
	"shortbot-go/internal/journal"
	"shortbot-go/internal/ledger"
	"shortbot-go/internal/policy"
)

// Strategy is the behaviour shared by strategy implementations. Run consumes
// one tick batch and returns the latest decision label; MakeDecision maps an
// observation straight to a ledger-applied decision.
type Strategy interface {
	Run(prices, volumes []float64, times []int64) (ledger.Decision, error)
	MakeDecision(obs []float32, price float64) ledger.Decision
	PortfolioValue(price float64) float64
	Name() string
}

// Deps bundles everything a strategy constructor needs.
type Deps struct {
	Symbol         string
	WindowSize     int
	CandlePeriod   int64
	InitialBalance float64
	Scaler         *feature.Scaler
	Policy         policy.Policy
	Journal        journal.Recorder
	Log            zerolog.Logger
}

// Build returns a strategy implementation matching the configured mode.
// Modes select the decision policy; the candle/window driver is shared.
func Build(mode string, deps Deps) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "short_rl", "momentum":
		return NewShortRL(deps)
	default:
		return nil, fmt.Errorf("unknown strategy mode %q", mode)
	}
}
