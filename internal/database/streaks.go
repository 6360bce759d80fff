package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
)

// GetStreak returns the stored streak state for a user.
func (d *Database) GetStreak(ctx context.Context, userID int64) (*models.Streak, error) {
	query := `
		SELECT user_id, current_streak, max_streak, last_solve_date, total_solves
		FROM streaks
		WHERE user_id = $1
	`

	var s models.Streak
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.CurrentStreak, &s.MaxStreak, &s.LastSolveDate, &s.TotalSolves)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: streak for user %d", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveStreak upserts the full streak state for a user.
func (d *Database) SaveStreak(ctx context.Context, s models.Streak) error {
	query := `
		INSERT INTO streaks (user_id, current_streak, max_streak, last_solve_date, total_solves)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			max_streak = EXCLUDED.max_streak,
			last_solve_date = EXCLUDED.last_solve_date,
			total_solves = EXCLUDED.total_solves
	`
	_, err := d.db.ExecContext(ctx, query,
		s.UserID, s.CurrentStreak, s.MaxStreak, s.LastSolveDate, s.TotalSolves)
	return err
}
