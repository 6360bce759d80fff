package database

import (
	"fmt"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// Migrations contains all schema migrations in version order.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "Add partial indexes for pending and active duel lookups",
		UpSQL: `
			CREATE INDEX IF NOT EXISTS idx_duels_pending
				ON duels (challenged_id) WHERE status = 'pending';
			CREATE INDEX IF NOT EXISTS idx_duels_active_challenger
				ON duels (challenger_id) WHERE status = 'active';
			CREATE INDEX IF NOT EXISTS idx_duels_active_challenged
				ON duels (challenged_id) WHERE status = 'active';
		`,
		DownSQL: `
			DROP INDEX IF EXISTS idx_duels_pending;
			DROP INDEX IF EXISTS idx_duels_active_challenger;
			DROP INDEX IF EXISTS idx_duels_active_challenged;
		`,
	},
	{
		Version:     2,
		Description: "Add platform_filter column to chats",
		UpSQL: `
			ALTER TABLE chats
			ADD COLUMN IF NOT EXISTS platform_filter TEXT DEFAULT 'all';
		`,
		DownSQL: `
			ALTER TABLE chats
			DROP COLUMN IF EXISTS platform_filter;
		`,
	},
}

// MigrationRecord is a row in the migrations bookkeeping table.
type MigrationRecord struct {
	Version     int    `db:"version"`
	Description string `db:"description"`
	AppliedAt   string `db:"applied_at"`
}

// CreateMigrationsTable creates the bookkeeping table.
func (d *Database) CreateMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`

	if _, err := d.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations lists migrations that have already run.
func (d *Database) GetAppliedMigrations() ([]MigrationRecord, error) {
	query := `SELECT version, description, applied_at FROM migrations ORDER BY version`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var migrations []MigrationRecord
	for rows.Next() {
		var m MigrationRecord
		if err := rows.Scan(&m.Version, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		migrations = append(migrations, m)
	}
	return migrations, rows.Err()
}

// ApplyMigration runs one migration inside a transaction.
func (d *Database) ApplyMigration(migration Migration) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.UpSQL); err != nil {
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}

	insertQuery := `INSERT INTO migrations (version, description) VALUES ($1, $2)`
	if _, err := tx.Exec(insertQuery, migration.Version, migration.Description); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}
	return nil
}

// RunMigrations applies all migrations that have not run yet.
func (d *Database) RunMigrations() error {
	if err := d.CreateMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := d.GetAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedMap := make(map[int]bool)
	for _, m := range applied {
		appliedMap[m.Version] = true
	}

	for _, migration := range Migrations {
		if appliedMap[migration.Version] {
			continue
		}
		d.logger.Infof("applying migration %d: %s", migration.Version, migration.Description)
		if err := d.ApplyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
