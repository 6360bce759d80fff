// Package streak derives consecutive solve-day statistics from
// submission histories and stored streak state.
package streak

import (
	"sort"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
	"github.com/shajidul-sobuj/cp-master-bot/internal/utils"
)

// Stats is the result of a full history computation.
type Stats struct {
	CurrentStreak  int
	MaxStreak      int
	TotalSolveDays int
}

// ComputeFromHistory derives streak statistics from a raw submission list.
// Only accepted submissions count. The current streak walks backward from
// reference, one calendar day at a time, and breaks on the first gap.
func ComputeFromHistory(submissions []platform.Submission, reference time.Time) Stats {
	seen := make(map[time.Time]bool)
	for _, s := range submissions {
		if !s.Accepted() {
			continue
		}
		seen[utils.DateOf(s.SubmittedAt)] = true
	}

	if len(seen) == 0 {
		return Stats{}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	refDate := utils.DateOf(reference)
	current := 0
	for seen[refDate.AddDate(0, 0, -current)] {
		current++
	}

	max := 1
	run := 1
	for i := 1; i < len(dates); i++ {
		if utils.DaysBetween(dates[i-1], dates[i]) == 1 {
			run++
			if run > max {
				max = run
			}
		} else {
			run = 1
		}
	}

	return Stats{
		CurrentStreak:  current,
		MaxStreak:      max,
		TotalSolveDays: len(dates),
	}
}

// RecordSolve applies a "solved today" event to stored streak state.
// It is idempotent per calendar day: a second call with the same date
// returns the state unchanged. The returned bool reports whether the
// state actually changed.
func RecordSolve(state models.Streak, today time.Time) (models.Streak, bool) {
	day := utils.DateOf(today)

	if state.LastSolveDate != nil && utils.SameDay(*state.LastSolveDate, day) {
		return state, false
	}

	if state.LastSolveDate != nil && utils.DaysBetween(*state.LastSolveDate, day) == 1 {
		state.CurrentStreak++
	} else {
		state.CurrentStreak = 1
	}
	if state.CurrentStreak > state.MaxStreak {
		state.MaxStreak = state.CurrentStreak
	}

	state.LastSolveDate = &day
	state.TotalSolves++
	return state, true
}
