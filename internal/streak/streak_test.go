package streak

import (
	"testing"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
)

func day(offset int) time.Time {
	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func accepted(t time.Time) platform.Submission {
	return platform.Submission{
		ProblemID:   "p",
		Platform:    models.PlatformCodeforces,
		Verdict:     platform.VerdictAccepted,
		SubmittedAt: t,
	}
}

func rejected(t time.Time) platform.Submission {
	s := accepted(t)
	s.Verdict = "WRONG_ANSWER"
	return s
}

func TestComputeFromHistoryConsecutiveDays(t *testing.T) {
	subs := []platform.Submission{
		accepted(day(0)),
		accepted(day(1)),
		accepted(day(2)),
	}

	stats := ComputeFromHistory(subs, day(2))
	if stats.CurrentStreak != 3 {
		t.Errorf("Expected current streak 3, got %d", stats.CurrentStreak)
	}
	if stats.MaxStreak != 3 {
		t.Errorf("Expected max streak 3, got %d", stats.MaxStreak)
	}
	if stats.TotalSolveDays != 3 {
		t.Errorf("Expected 3 solve days, got %d", stats.TotalSolveDays)
	}
}

func TestComputeFromHistoryGapBreaksStreak(t *testing.T) {
	subs := []platform.Submission{
		accepted(day(0)),
		accepted(day(2)),
	}

	stats := ComputeFromHistory(subs, day(2))
	if stats.CurrentStreak != 1 {
		t.Errorf("Expected current streak 1 after gap, got %d", stats.CurrentStreak)
	}
	if stats.MaxStreak != 1 {
		t.Errorf("Expected max streak 1, got %d", stats.MaxStreak)
	}
}

func TestComputeFromHistoryNoSolveOnReferenceDay(t *testing.T) {
	subs := []platform.Submission{
		accepted(day(0)),
		accepted(day(1)),
	}

	stats := ComputeFromHistory(subs, day(3))
	if stats.CurrentStreak != 0 {
		t.Errorf("Expected current streak 0, got %d", stats.CurrentStreak)
	}
	if stats.MaxStreak != 2 {
		t.Errorf("Expected max streak 2, got %d", stats.MaxStreak)
	}
}

func TestComputeFromHistoryIgnoresRejected(t *testing.T) {
	subs := []platform.Submission{
		accepted(day(0)),
		rejected(day(1)),
		rejected(day(2)),
	}

	stats := ComputeFromHistory(subs, day(2))
	if stats.CurrentStreak != 0 {
		t.Errorf("Expected current streak 0, got %d", stats.CurrentStreak)
	}
	if stats.TotalSolveDays != 1 {
		t.Errorf("Expected 1 solve day, got %d", stats.TotalSolveDays)
	}
}

func TestComputeFromHistoryMultipleSolvesSameDay(t *testing.T) {
	subs := []platform.Submission{
		accepted(day(0).Add(9 * time.Hour)),
		accepted(day(0).Add(15 * time.Hour)),
		accepted(day(1)),
	}

	stats := ComputeFromHistory(subs, day(1))
	if stats.CurrentStreak != 2 {
		t.Errorf("Expected current streak 2, got %d", stats.CurrentStreak)
	}
	if stats.TotalSolveDays != 2 {
		t.Errorf("Expected 2 solve days, got %d", stats.TotalSolveDays)
	}
}

func TestComputeFromHistoryEmpty(t *testing.T) {
	stats := ComputeFromHistory(nil, day(0))
	if stats.CurrentStreak != 0 || stats.MaxStreak != 0 || stats.TotalSolveDays != 0 {
		t.Errorf("Expected zero stats for empty history, got %+v", stats)
	}
}

func TestRecordSolveStartsStreak(t *testing.T) {
	state, changed := RecordSolve(models.Streak{UserID: 1}, day(0))
	if !changed {
		t.Error("First solve should change state")
	}
	if state.CurrentStreak != 1 {
		t.Errorf("Expected streak 1, got %d", state.CurrentStreak)
	}
	if state.MaxStreak != 1 {
		t.Errorf("Expected max streak 1, got %d", state.MaxStreak)
	}
	if state.TotalSolves != 1 {
		t.Errorf("Expected 1 total solve, got %d", state.TotalSolves)
	}
}

func TestRecordSolveIdempotentPerDay(t *testing.T) {
	state, _ := RecordSolve(models.Streak{UserID: 1}, day(0))

	again, changed := RecordSolve(state, day(0))
	if changed {
		t.Error("Second solve on the same day should not change state")
	}
	if again.CurrentStreak != state.CurrentStreak {
		t.Errorf("Streak changed on same-day solve: %d -> %d", state.CurrentStreak, again.CurrentStreak)
	}
	if again.TotalSolves != state.TotalSolves {
		t.Errorf("Total solves changed on same-day solve: %d -> %d", state.TotalSolves, again.TotalSolves)
	}
}

func TestRecordSolveExtendsOnNextDay(t *testing.T) {
	state, _ := RecordSolve(models.Streak{UserID: 1}, day(0))
	state, changed := RecordSolve(state, day(1))

	if !changed {
		t.Error("Next-day solve should change state")
	}
	if state.CurrentStreak != 2 {
		t.Errorf("Expected streak 2, got %d", state.CurrentStreak)
	}
	if state.MaxStreak != 2 {
		t.Errorf("Expected max streak 2, got %d", state.MaxStreak)
	}
}

func TestRecordSolveResetsAfterGap(t *testing.T) {
	state, _ := RecordSolve(models.Streak{UserID: 1}, day(0))
	state, _ = RecordSolve(state, day(1))
	state, _ = RecordSolve(state, day(5))

	if state.CurrentStreak != 1 {
		t.Errorf("Expected streak reset to 1 after gap, got %d", state.CurrentStreak)
	}
	if state.MaxStreak != 2 {
		t.Errorf("Max streak should survive the reset, got %d", state.MaxStreak)
	}
	if state.TotalSolves != 3 {
		t.Errorf("Expected 3 total solves, got %d", state.TotalSolves)
	}
}

func TestRecordSolveMaxNeverDecreases(t *testing.T) {
	state := models.Streak{UserID: 1}
	days := []int{0, 1, 2, 6, 7, 12}

	prevMax := 0
	for _, d := range days {
		state, _ = RecordSolve(state, day(d))
		if state.MaxStreak < prevMax {
			t.Errorf("Max streak decreased: %d -> %d at day %d", prevMax, state.MaxStreak, d)
		}
		prevMax = state.MaxStreak
	}

	if state.MaxStreak != 3 {
		t.Errorf("Expected max streak 3, got %d", state.MaxStreak)
	}
}
