package utils

import (
	"testing"
	"time"
)

func TestDateOfTruncatesToMidnight(t *testing.T) {
	ts := time.Date(2025, 6, 10, 18, 45, 12, 0, time.UTC)
	date := DateOf(ts)

	if date.Hour() != 0 || date.Minute() != 0 || date.Second() != 0 {
		t.Errorf("DateOf should truncate to midnight, got %v", date)
	}
	if date.Year() != 2025 || date.Month() != time.June || date.Day() != 10 {
		t.Errorf("DateOf changed the calendar date: %v", date)
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 11, 0, 0, 1, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Error("Same calendar date should be the same day")
	}
	if SameDay(evening, nextDay) {
		t.Error("Different dates should not be the same day")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC)

	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("Expected 1 day between adjacent dates, got %d", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Errorf("Expected 0 days for the same date, got %d", got)
	}
	if got := DaysBetween(b, a); got != -1 {
		t.Errorf("Expected -1 day for reversed order, got %d", got)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 6, 10, 18, 45, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "2025-06-10" {
		t.Errorf("Expected 2025-06-10, got %s", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m 0s"},
		{45 * time.Second, "0m 45s"},
		{time.Minute + 5*time.Second, "1m 5s"},
		{59 * time.Minute, "59m 0s"},
		{-time.Minute, "0m 0s"},
	}
	for _, c := range cases {
		if got := FormatRemaining(c.d); got != c.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestBotTimeUsesReferenceZone(t *testing.T) {
	now := BotTime()
	if now.IsZero() {
		t.Error("BotTime should not be zero")
	}
	if now.Location().String() != "UTC" {
		t.Errorf("Expected UTC location, got %s", now.Location().String())
	}
}
