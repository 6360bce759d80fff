package utils

import (
	"fmt"
	"time"
)

// All streak and duel timestamps are interpreted in a single reference
// timezone so day boundaries are stable regardless of where the bot runs.
var botLocation *time.Location

func init() {
	var err error
	botLocation, err = time.LoadLocation("UTC")
	if err != nil {
		botLocation = time.UTC
	}
}

// BotTime returns the current time in the bot's reference timezone.
func BotTime() time.Time {
	return time.Now().In(botLocation)
}

// DateOf truncates a timestamp to midnight in the reference timezone.
func DateOf(t time.Time) time.Time {
	local := t.In(botLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, botLocation)
}

// Today returns the current date (midnight) in the reference timezone.
func Today() time.Time {
	return DateOf(BotTime())
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// FormatDate renders a date in YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.In(botLocation).Format("2006-01-02")
}

// FormatRemaining renders a duration as "Xm Ys", floored to whole seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
