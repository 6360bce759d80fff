package models

import (
	"time"
)

// Duel status values. A duel starts out pending and either becomes
// active (accepted) or declined; an active duel always ends completed.
const (
	DuelStatusPending   = "pending"
	DuelStatusActive    = "active"
	DuelStatusDeclined  = "declined"
	DuelStatusCompleted = "completed"
)

// Platform tags used across the problem and contest caches.
const (
	PlatformCodeforces = "codeforces"
	PlatformAtCoder    = "atcoder"
	PlatformLeetCode   = "leetcode"
)

// User represents a chat participant with linked competitive programming handles.
type User struct {
	UserID         int64     `json:"user_id" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	FirstName      string    `json:"first_name" db:"first_name"`
	CFHandle       *string   `json:"cf_handle" db:"cf_handle"`
	AtCoderHandle  *string   `json:"atcoder_handle" db:"atcoder_handle"`
	LeetCodeHandle *string   `json:"leetcode_handle" db:"leetcode_handle"`
	CurrentRating  int       `json:"current_rating" db:"current_rating"`
	MaxRating      int       `json:"max_rating" db:"max_rating"`
	Rank           *string   `json:"rank" db:"rank"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserPatch enumerates the mutable user fields. Nil fields are left untouched.
type UserPatch struct {
	CFHandle       *string
	AtCoderHandle  *string
	LeetCodeHandle *string
	CurrentRating  *int
	MaxRating      *int
	Rank           *string
}

// Chat represents a group chat and its contest reminder settings.
type Chat struct {
	ChatID           int64     `json:"chat_id" db:"chat_id"`
	ChatType         string    `json:"chat_type" db:"chat_type"`
	Title            string    `json:"title" db:"title"`
	ContestReminders bool      `json:"contest_reminders" db:"contest_reminders"`
	ReminderTime     int       `json:"reminder_time" db:"reminder_time"` // minutes before start
	PlatformFilter   string    `json:"platform_filter" db:"platform_filter"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Duel represents a timed one-on-one challenge between two chat participants.
// Problem and timestamps are bound only when the duel is accepted.
type Duel struct {
	DuelID        int64      `json:"duel_id" db:"duel_id"`
	ChatID        int64      `json:"chat_id" db:"chat_id"`
	ChallengerID  int64      `json:"challenger_id" db:"challenger_id"`
	ChallengedID  int64      `json:"challenged_id" db:"challenged_id"`
	ProblemRating int        `json:"problem_rating" db:"problem_rating"`
	ProblemName   *string    `json:"problem_name" db:"problem_name"`
	ProblemURL    *string    `json:"problem_url" db:"problem_url"`
	Status        string     `json:"status" db:"status"`
	StartTime     *time.Time `json:"start_time" db:"start_time"`
	EndTime       *time.Time `json:"end_time" db:"end_time"`
	WinnerID      *int64     `json:"winner_id" db:"winner_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Streak tracks a user's consecutive solve days.
type Streak struct {
	UserID        int64      `json:"user_id" db:"user_id"`
	CurrentStreak int        `json:"current_streak" db:"current_streak"`
	MaxStreak     int        `json:"max_streak" db:"max_streak"`
	LastSolveDate *time.Time `json:"last_solve_date" db:"last_solve_date"`
	TotalSolves   int        `json:"total_solves" db:"total_solves"`
}

// Problem is a cached problem record produced by the problem selector.
type Problem struct {
	ProblemID string    `json:"problem_id" db:"problem_id"`
	Platform  string    `json:"platform" db:"platform"`
	Name      string    `json:"name" db:"name"`
	Rating    *int      `json:"rating" db:"rating"` // some platforms omit ratings
	Tags      []string  `json:"tags" db:"tags"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Contest is a cached upcoming contest.
type Contest struct {
	ContestID string    `json:"contest_id" db:"contest_id"`
	Platform  string    `json:"platform" db:"platform"`
	Name      string    `json:"name" db:"name"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	Duration  int       `json:"duration" db:"duration"` // minutes
	URL       string    `json:"url" db:"url"`
	Notified  bool      `json:"notified" db:"notified"`
}
