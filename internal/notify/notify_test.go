package notify

import (
	"strings"
	"testing"
	"time"
)

func TestNopNeverFails(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.Notify("subject", "body"); err != nil {
		t.Fatalf("nop notifier returned error: %v", err)
	}
}

func TestTimeUntilNextOpenBeforeOpen(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, 3, 11, 8, 30, 0, 0, loc)
	until := TimeUntilNextOpen(now, 9, 30, loc)
	if until != time.Hour {
		t.Fatalf("expected 1h until open, got %s", until)
	}
}

func TestTimeUntilNextOpenRollsToTomorrow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, loc)
	until := TimeUntilNextOpen(now, 9, 30, loc)
	if until != 23*time.Hour+30*time.Minute {
		t.Fatalf("expected 23h30m until tomorrow's open, got %s", until)
	}
}

func TestMessageBuilders(t *testing.T) {
	subject, body := IntroMessage(90 * time.Minute)
	if subject != "Daily Program Starting" || !strings.Contains(body, "1h30m") {
		t.Fatalf("unexpected intro message: %q %q", subject, body)
	}

	subject, body = UpdateMessage("short_rl", 25123.456)
	if subject != "Daily Portfolio Update" || !strings.Contains(body, "$25123.46") {
		t.Fatalf("unexpected update message: %q %q", subject, body)
	}

	subject, body = SummaryMessage("short_rl", 27500, "Buy at 100\nSell at 110\n")
	if subject != "Daily Trade Summary" || !strings.Contains(body, "Sell at 110") {
		t.Fatalf("unexpected summary message: %q %q", subject, body)
	}

	subject, body = EndingMessage("short_rl", 27500, 17*time.Hour)
	if subject != "Program Ending" || !strings.Contains(body, "$27500.00") {
		t.Fatalf("unexpected ending message: %q %q", subject, body)
	}
}
