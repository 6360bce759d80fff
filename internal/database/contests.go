package database

import (
	"context"
	"strings"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
)

// CacheContest upserts one contest. The notified flag survives updates
// so refreshing the cache does not re-trigger reminders.
func (d *Database) CacheContest(ctx context.Context, c models.Contest) error {
	query := `
		INSERT INTO contests (contest_id, platform, name, start_time, duration, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (contest_id) DO UPDATE SET
			name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			duration = EXCLUDED.duration,
			url = EXCLUDED.url
	`
	_, err := d.db.ExecContext(ctx, query, c.ContestID, c.Platform, c.Name, c.StartTime, c.Duration, c.URL)
	return err
}

// GetUpcomingContests returns cached contests that have not started yet,
// soonest first.
func (d *Database) GetUpcomingContests(ctx context.Context) ([]models.Contest, error) {
	query := `
		SELECT contest_id, platform, name, start_time, duration, url, notified
		FROM contests
		WHERE start_time > NOW()
		ORDER BY start_time ASC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contests []models.Contest
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(&c.ContestID, &c.Platform, &c.Name, &c.StartTime, &c.Duration, &c.URL, &c.Notified); err != nil {
			return nil, err
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

// GetContestsDueForReminder returns un-notified contests starting within
// the lead window from now.
func (d *Database) GetContestsDueForReminder(ctx context.Context, lead time.Duration) ([]models.Contest, error) {
	query := `
		SELECT contest_id, platform, name, start_time, duration, url, notified
		FROM contests
		WHERE notified = FALSE
		  AND start_time > NOW()
		  AND start_time <= NOW() + $1 * INTERVAL '1 minute'
		ORDER BY start_time ASC
	`

	rows, err := d.db.QueryContext(ctx, query, int(lead.Minutes()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contests []models.Contest
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(&c.ContestID, &c.Platform, &c.Name, &c.StartTime, &c.Duration, &c.URL, &c.Notified); err != nil {
			return nil, err
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

// MarkContestNotified records that reminders for a contest went out.
func (d *Database) MarkContestNotified(ctx context.Context, contestID string) error {
	_, err := d.db.ExecContext(ctx, `UPDATE contests SET notified = TRUE WHERE contest_id = $1`, contestID)
	return err
}

// CacheProblem upserts one problem into the problem cache.
func (d *Database) CacheProblem(ctx context.Context, p models.Problem) error {
	query := `
		INSERT INTO problems (problem_id, platform, name, rating, tags, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (problem_id) DO UPDATE SET
			name = EXCLUDED.name,
			rating = EXCLUDED.rating,
			tags = EXCLUDED.tags,
			url = EXCLUDED.url
	`
	_, err := d.db.ExecContext(ctx, query,
		p.ProblemID, p.Platform, p.Name, p.Rating, strings.Join(p.Tags, ","), p.URL)
	return err
}

// RecordDailyProblem logs a daily problem assignment for a chat.
func (d *Database) RecordDailyProblem(ctx context.Context, chatID int64, problemID string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO daily_problems (chat_id, problem_id) VALUES ($1, $2)`,
		chatID, problemID)
	return err
}
