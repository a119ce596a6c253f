// Package ledger tracks cash and the single open position (long or short)
// for one instrument, and applies policy actions under position constraints.
package ledger

import (
	"math"

	"shortbot-go/internal/policy"
)

// Decision labels every outcome of applying an action, including the
// business-rule rejections. Rejections are ordinary labels, never errors.
type Decision string

const (
	DecisionBuy         Decision = "Buy"
	DecisionSell        Decision = "Sell"
	DecisionShort       Decision = "Short"
	DecisionCoverShort  Decision = "CoverShort"
	DecisionHold        Decision = "Hold"
	DecisionCannotBuy   Decision = "CannotBuy"
	DecisionCannotShort Decision = "CannotShort"
)

// State is the position side of the ledger.
type State int

const (
	Flat State = iota
	Long
	Short
)

func (s State) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Result reports what an Apply call did. Reward is the normalized return of
// a position close, zero for everything else.
type Result struct {
	Decision Decision
	Reward   float64
}

// Ledger is the mutable account state. At most one of longShares and
// shortShares is nonzero. Only the four position operations mutate it, and
// only from the single decision-loop goroutine.
type Ledger struct {
	cash        float64
	longShares  int64
	shortShares int64
	longEntry   float64
	shortEntry  float64
}

// New seeds a flat ledger with starting cash.
func New(cash float64) *Ledger {
	return &Ledger{cash: cash}
}

// Apply executes one policy action at the given price and returns the
// decision label plus any realized reward.
func (l *Ledger) Apply(action policy.Action, price float64) Result {
	switch action {
	case policy.Buy:
		if l.shortShares > 0 {
			return Result{Decision: DecisionCoverShort, Reward: l.coverShort(price)}
		}
		if l.longShares == 0 && l.canBuy(price) {
			l.buy(price)
			return Result{Decision: DecisionBuy}
		}
		return Result{Decision: DecisionCannotBuy}

	case policy.SellOrShort:
		if l.longShares > 0 {
			return Result{Decision: DecisionSell, Reward: l.sell(price)}
		}
		if l.shortShares == 0 && l.canShort(price) {
			l.openShort(price)
			return Result{Decision: DecisionShort}
		}
		return Result{Decision: DecisionCannotShort}

	default:
		// Unrealized P&L is deliberately not rewarded on hold.
		return Result{Decision: DecisionHold}
	}
}

// buy converts as much cash as possible into whole shares.
func (l *Ledger) buy(price float64) {
	shares := int64(math.Floor(l.cash / price))
	l.longShares = shares
	l.cash -= float64(shares) * price
	l.longEntry = price
}

// sell closes the entire long position and returns the normalized return.
func (l *Ledger) sell(price float64) float64 {
	l.cash += float64(l.longShares) * price
	reward := (price - l.longEntry) / l.longEntry
	l.longShares = 0
	l.longEntry = 0
	return reward
}

// openShort sells short as many whole shares as cash covers, crediting the
// proceeds immediately.
func (l *Ledger) openShort(price float64) {
	shares := int64(math.Floor(l.cash / price))
	l.shortShares = shares
	l.cash += float64(shares) * price
	l.shortEntry = price
}

// coverShort buys back the entire short position and returns the normalized
// return.
func (l *Ledger) coverShort(price float64) float64 {
	l.cash -= float64(l.shortShares) * price
	reward := (l.shortEntry - price) / l.shortEntry
	l.shortShares = 0
	l.shortEntry = 0
	return reward
}

func (l *Ledger) canBuy(price float64) bool   { return l.cash >= price }
func (l *Ledger) canShort(price float64) bool { return l.cash >= price }

// PortfolioValue marks the account at the given price. Short exposure counts
// against the balance because the proceeds were credited at entry.
func (l *Ledger) PortfolioValue(price float64) float64 {
	return l.cash + float64(l.longShares)*price - float64(l.shortShares)*price
}

// State reports which side of the market the ledger is on.
func (l *Ledger) State() State {
	switch {
	case l.longShares > 0:
		return Long
	case l.shortShares > 0:
		return Short
	default:
		return Flat
	}
}

// Cash returns the free balance.
func (l *Ledger) Cash() float64 { return l.cash }

// LongShares returns the open long quantity.
func (l *Ledger) LongShares() int64 { return l.longShares }

// ShortShares returns the open short quantity.
func (l *Ledger) ShortShares() int64 { return l.shortShares }
