package notify

import (
	"fmt"
	"time"
)

// TimeUntilNextOpen reports how long until the next market open, rolling to
// tomorrow when today's open already passed.
func TimeUntilNextOpen(now time.Time, openHour, openMinute int, loc *time.Location) time.Duration {
	local := now.In(loc)
	todayOpen := time.Date(local.Year(), local.Month(), local.Day(), openHour, openMinute, 0, 0, loc)
	next := todayOpen
	if !local.Before(todayOpen) {
		next = todayOpen.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}

// IntroMessage announces a successful start.
func IntroMessage(untilOpen time.Duration) (string, string) {
	subject := "Daily Program Starting"
	body := fmt.Sprintf("The trading program has started successfully.\nTime until next market open: %s", untilOpen)
	return subject, body
}

// UpdateMessage is the hourly portfolio notice.
func UpdateMessage(strategyName string, portfolioValue float64) (string, string) {
	subject := "Daily Portfolio Update"
	body := fmt.Sprintf("%s - Current Portfolio Value: $%.2f", strategyName, portfolioValue)
	return subject, body
}

// SummaryMessage carries the full trade list at market close.
func SummaryMessage(strategyName string, portfolioValue float64, trades string) (string, string) {
	subject := "Daily Trade Summary"
	body := fmt.Sprintf("%s - Final Portfolio Value: $%.2f\n\nTrades:\n%s", strategyName, portfolioValue, trades)
	return subject, body
}

// EndingMessage announces shutdown at market close.
func EndingMessage(strategyName string, portfolioValue float64, untilOpen time.Duration) (string, string) {
	subject := "Program Ending"
	body := fmt.Sprintf("%s - Final Portfolio Value: $%.2f\nTime until next market open: %s",
		strategyName, portfolioValue, untilOpen)
	return subject, body
}
