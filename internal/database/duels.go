package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
)

const duelColumns = `duel_id, chat_id, challenger_id, challenged_id, problem_rating,
	problem_name, problem_url, status, start_time, end_time, winner_id, created_at`

func scanDuel(row interface{ Scan(...interface{}) error }) (*models.Duel, error) {
	var d models.Duel
	err := row.Scan(
		&d.DuelID, &d.ChatID, &d.ChallengerID, &d.ChallengedID, &d.ProblemRating,
		&d.ProblemName, &d.ProblemURL, &d.Status, &d.StartTime, &d.EndTime, &d.WinnerID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDuel inserts a pending duel, enforcing that the challenged user
// has no other pending duel. Check and insert happen in one statement,
// so two concurrent challenges against the same user cannot both land.
func (d *Database) CreateDuel(ctx context.Context, chatID, challengerID, challengedID int64, rating int) (int64, error) {
	query := `
		INSERT INTO duels (chat_id, challenger_id, challenged_id, problem_rating, status)
		SELECT $1, $2, $3, $4, 'pending'
		WHERE NOT EXISTS (
			SELECT 1 FROM duels WHERE challenged_id = $3 AND status = 'pending'
		)
		RETURNING duel_id
	`

	var duelID int64
	err := d.db.QueryRowContext(ctx, query, chatID, challengerID, challengedID, rating).Scan(&duelID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: user %d", models.ErrAlreadyPending, challengedID)
	}
	if err != nil {
		return 0, err
	}
	return duelID, nil
}

// PendingDuelFor returns the most recent pending duel where the user is
// the challenged party. Most-recently-created wins as the tie-break.
func (d *Database) PendingDuelFor(ctx context.Context, challengedID int64) (*models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels
		WHERE challenged_id = $1 AND status = 'pending'
		ORDER BY created_at DESC, duel_id DESC
		LIMIT 1
	`

	duel, err := scanDuel(d.db.QueryRowContext(ctx, query, challengedID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no pending duel for user %d", models.ErrNotFound, challengedID)
	}
	return duel, err
}

// ActivateDuel transitions a pending duel to active, binding the problem
// and the start/end timestamps. The status guard makes the transition a
// check-and-set: a duel that is no longer pending is not touched.
func (d *Database) ActivateDuel(ctx context.Context, duelID int64, problemName, problemURL string, start, end time.Time) error {
	query := `
		UPDATE duels
		SET status = 'active', problem_name = $2, problem_url = $3, start_time = $4, end_time = $5
		WHERE duel_id = $1 AND status = 'pending'
	`
	result, err := d.db.ExecContext(ctx, query, duelID, problemName, problemURL, start, end)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: duel %d is not pending", models.ErrInvalidState, duelID)
	}
	return nil
}

// DeclineDuel transitions a pending duel to declined. Terminal.
func (d *Database) DeclineDuel(ctx context.Context, duelID int64) error {
	query := `UPDATE duels SET status = 'declined' WHERE duel_id = $1 AND status = 'pending'`
	result, err := d.db.ExecContext(ctx, query, duelID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: duel %d is not pending", models.ErrInvalidState, duelID)
	}
	return nil
}

// ActiveDuelFor returns the most recent active duel where the user is a
// participant on either side.
func (d *Database) ActiveDuelFor(ctx context.Context, userID int64) (*models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels
		WHERE (challenger_id = $1 OR challenged_id = $1) AND status = 'active'
		ORDER BY created_at DESC, duel_id DESC
		LIMIT 1
	`

	duel, err := scanDuel(d.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active duel for user %d", models.ErrNotFound, userID)
	}
	return duel, err
}

// CompleteDuel transitions an active duel to completed. Calling it again
// on an already completed duel is a no-op, so expiry happens exactly once.
func (d *Database) CompleteDuel(ctx context.Context, duelID int64) error {
	query := `UPDATE duels SET status = 'completed' WHERE duel_id = $1 AND status = 'active'`
	result, err := d.db.ExecContext(ctx, query, duelID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		var status string
		err := d.db.QueryRowContext(ctx, `SELECT status FROM duels WHERE duel_id = $1`, duelID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: duel %d", models.ErrNotFound, duelID)
		}
		if err != nil {
			return err
		}
		if status != models.DuelStatusCompleted {
			return fmt.Errorf("%w: duel %d is %s", models.ErrInvalidState, duelID, status)
		}
	}
	return nil
}

// CountPendingFor reports how many pending duels target the user.
// The single-pending invariant keeps this at most 1.
func (d *Database) CountPendingFor(ctx context.Context, challengedID int64) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM duels WHERE challenged_id = $1 AND status = 'pending'`,
		challengedID).Scan(&count)
	return count, err
}
