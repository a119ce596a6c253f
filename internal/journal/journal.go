// Package journal keeps the running record of strategy decisions for the
// closing summary and post-run analysis.
package journal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"shortbot-go/internal/ledger"
)

// Entry is one decision record.
type Entry struct {
	Ts             time.Time       `json:"ts"`
	Decision       ledger.Decision `json:"decision"`
	Price          float64         `json:"price"`
	PortfolioValue float64         `json:"portfolio_value"`
	Reward         float64         `json:"reward,omitempty"`
}

// Recorder captures entries for later inspection.
type Recorder interface {
	Record(Entry)
}

// Journal stores decision entries in memory for quick inspection.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

// New creates an empty journal optionally pre-sizing storage.
func New(capacity int) *Journal {
	if capacity < 0 {
		capacity = 0
	}
	return &Journal{entries: make([]Entry, 0, capacity)}
}

// Record appends an entry.
func (j *Journal) Record(e Entry) {
	j.mu.Lock()
	j.entries = append(j.entries, e)
	j.mu.Unlock()
}

// Snapshot returns a copy of the recorded entries.
func (j *Journal) Snapshot() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Reset clears all stored entries.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = j.entries[:0]
	j.mu.Unlock()
}

// Summary renders the trade list for the closing notification.
func (j *Journal) Summary() string {
	entries := j.Snapshot()
	if len(entries) == 0 {
		return "No decisions recorded."
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-11s price=%.2f portfolio=%.2f",
			e.Ts.Format(time.RFC3339), e.Decision, e.Price, e.PortfolioValue)
		if e.Reward != 0 {
			fmt.Fprintf(&b, " reward=%.4f", e.Reward)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
