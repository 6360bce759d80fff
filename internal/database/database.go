package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"

	_ "github.com/lib/pq"
)

type Database struct {
	db     *sql.DB
	logger logger.Logger
}

func New(databaseURL string, log logger.Logger) (*Database, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{
		db:     db,
		logger: log,
	}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// CreateTables creates all tables if they do not exist and then runs
// the pending schema migrations.
func (d *Database) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT DEFAULT '',
			first_name TEXT DEFAULT '',
			cf_handle TEXT,
			atcoder_handle TEXT,
			leetcode_handle TEXT,
			current_rating INTEGER DEFAULT 0,
			max_rating INTEGER DEFAULT 0,
			rank TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			chat_id BIGINT PRIMARY KEY,
			chat_type TEXT NOT NULL,
			title TEXT DEFAULT '',
			contest_reminders BOOLEAN DEFAULT TRUE,
			reminder_time INTEGER DEFAULT 30,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS contests (
			contest_id TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			name TEXT NOT NULL,
			start_time TIMESTAMP WITH TIME ZONE NOT NULL,
			duration INTEGER NOT NULL,
			url TEXT DEFAULT '',
			notified BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS duels (
			duel_id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			challenger_id BIGINT NOT NULL,
			challenged_id BIGINT NOT NULL,
			problem_rating INTEGER NOT NULL,
			problem_name TEXT,
			problem_url TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			start_time TIMESTAMP WITH TIME ZONE,
			end_time TIMESTAMP WITH TIME ZONE,
			winner_id BIGINT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS problems (
			problem_id TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			name TEXT NOT NULL,
			rating INTEGER,
			tags TEXT DEFAULT '',
			url TEXT DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS streaks (
			user_id BIGINT PRIMARY KEY,
			current_streak INTEGER DEFAULT 0,
			max_streak INTEGER DEFAULT 0,
			last_solve_date DATE,
			total_solves INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS daily_problems (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			problem_id TEXT NOT NULL,
			assigned_date DATE DEFAULT CURRENT_DATE
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if err := d.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// EnsureUser creates the user row if missing and refreshes the chat
// identity fields. Handles and ratings are never touched here.
func (d *Database) EnsureUser(ctx context.Context, userID int64, username, firstName string) error {
	query := `
		INSERT INTO users (user_id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
			updated_at = NOW()
	`
	_, err := d.db.ExecContext(ctx, query, userID, username, firstName)
	return err
}

func (d *Database) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT user_id, username, first_name, cf_handle, atcoder_handle, leetcode_handle,
		       current_rating, max_rating, rank, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var u models.User
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&u.UserID, &u.Username, &u.FirstName, &u.CFHandle, &u.AtCoderHandle, &u.LeetCodeHandle,
		&u.CurrentRating, &u.MaxRating, &u.Rank, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies the non-nil fields of the patch. Only the fields
// enumerated on UserPatch are mutable this way.
func (d *Database) UpdateUser(ctx context.Context, userID int64, patch models.UserPatch) error {
	query := `
		UPDATE users SET
			cf_handle = COALESCE($2, cf_handle),
			atcoder_handle = COALESCE($3, atcoder_handle),
			leetcode_handle = COALESCE($4, leetcode_handle),
			current_rating = COALESCE($5, current_rating),
			max_rating = COALESCE($6, max_rating),
			rank = COALESCE($7, rank),
			updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := d.db.ExecContext(ctx, query, userID,
		patch.CFHandle, patch.AtCoderHandle, patch.LeetCodeHandle,
		patch.CurrentRating, patch.MaxRating, patch.Rank)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: user %d", models.ErrNotFound, userID)
	}
	return nil
}

// GetLeaderboard returns the top users with linked Codeforces handles,
// highest rating first.
func (d *Database) GetLeaderboard(ctx context.Context, limit int) ([]models.User, error) {
	query := `
		SELECT user_id, username, first_name, cf_handle, atcoder_handle, leetcode_handle,
		       current_rating, max_rating, rank, created_at, updated_at
		FROM users
		WHERE cf_handle IS NOT NULL
		ORDER BY current_rating DESC
		LIMIT $1
	`

	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.UserID, &u.Username, &u.FirstName, &u.CFHandle, &u.AtCoderHandle, &u.LeetCodeHandle,
			&u.CurrentRating, &u.MaxRating, &u.Rank, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpsertChat records a chat and its type. Reminder settings are kept.
func (d *Database) UpsertChat(ctx context.Context, chatID int64, chatType, title string) error {
	query := `
		INSERT INTO chats (chat_id, chat_type, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO UPDATE SET
			chat_type = EXCLUDED.chat_type,
			title = COALESCE(NULLIF(EXCLUDED.title, ''), chats.title)
	`
	_, err := d.db.ExecContext(ctx, query, chatID, chatType, title)
	return err
}

func (d *Database) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	query := `
		SELECT chat_id, chat_type, title, contest_reminders, reminder_time, platform_filter, created_at
		FROM chats
		WHERE chat_id = $1
	`

	var c models.Chat
	err := d.db.QueryRowContext(ctx, query, chatID).Scan(
		&c.ChatID, &c.ChatType, &c.Title, &c.ContestReminders, &c.ReminderTime, &c.PlatformFilter, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: chat %d", models.ErrNotFound, chatID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetChatReminders flips the contest reminder subscription for a chat.
func (d *Database) SetChatReminders(ctx context.Context, chatID int64, enabled bool) error {
	query := `UPDATE chats SET contest_reminders = $2 WHERE chat_id = $1`
	result, err := d.db.ExecContext(ctx, query, chatID, enabled)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: chat %d", models.ErrNotFound, chatID)
	}
	return nil
}

// GetSubscribedChats returns chats with contest reminders enabled.
func (d *Database) GetSubscribedChats(ctx context.Context) ([]models.Chat, error) {
	query := `
		SELECT chat_id, chat_type, title, contest_reminders, reminder_time, platform_filter, created_at
		FROM chats
		WHERE contest_reminders = TRUE
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var c models.Chat
		err := rows.Scan(&c.ChatID, &c.ChatType, &c.Title, &c.ContestReminders, &c.ReminderTime, &c.PlatformFilter, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
