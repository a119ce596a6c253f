package journal

import (
	"strings"
	"testing"
	"time"

	"shortbot-go/internal/ledger"
)

func TestRecordAndSnapshot(t *testing.T) {
	j := New(4)
	j.Record(Entry{Ts: time.Unix(1700000000, 0), Decision: ledger.DecisionBuy, Price: 100, PortfolioValue: 25000})
	j.Record(Entry{Ts: time.Unix(1700000060, 0), Decision: ledger.DecisionSell, Price: 110, PortfolioValue: 27500, Reward: 0.1})

	if j.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", j.Len())
	}

	snap := j.Snapshot()
	snap[0].Price = 0 // mutating the copy must not touch the journal
	if j.Snapshot()[0].Price != 100 {
		t.Fatalf("snapshot aliases internal storage")
	}
}

func TestSummaryIncludesRewards(t *testing.T) {
	j := New(0)
	if got := j.Summary(); got != "No decisions recorded." {
		t.Fatalf("unexpected empty summary: %q", got)
	}

	j.Record(Entry{Ts: time.Unix(1700000060, 0), Decision: ledger.DecisionSell, Price: 110, PortfolioValue: 27500, Reward: 0.1})
	got := j.Summary()
	if !strings.Contains(got, "Sell") {
		t.Fatalf("summary missing decision label: %q", got)
	}
	if !strings.Contains(got, "reward=0.1000") {
		t.Fatalf("summary missing reward: %q", got)
	}
}

func TestReset(t *testing.T) {
	j := New(0)
	j.Record(Entry{Decision: ledger.DecisionHold})
	j.Reset()
	if j.Len() != 0 {
		t.Fatalf("expected empty journal after reset")
	}
}
