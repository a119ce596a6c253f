package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shortbot-go/internal/ledger"
)

func TestJSONLRecorderAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "trades.jsonl")
	rec, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}

	rec.Record(Entry{Ts: time.Unix(1700000000, 0).UTC(), Decision: ledger.DecisionBuy, Price: 100, PortfolioValue: 25000})
	rec.Record(Entry{Ts: time.Unix(1700000060, 0).UTC(), Decision: ledger.DecisionHold, Price: 101, PortfolioValue: 25250})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recorded file: %v", err)
	}
	defer file.Close()

	var lines int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", lines)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	rec, err := NewJSONLRecorder(filepath.Join(t.TempDir(), "x.jsonl"))
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}
