package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS notes (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: list ordering index (created_at, id)
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at, id)`); err != nil {
		return fmt.Errorf("create idx_notes_created_at: %w", err)
	}

	// Migration 2: reject blank documents at the storage layer as well
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'trigger' AND name = 'notes_require_fields'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check notes_require_fields trigger: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`
			CREATE TRIGGER notes_require_fields BEFORE INSERT ON notes
			WHEN trim(new.title) = '' OR trim(new.content) = ''
			BEGIN
			  SELECT RAISE(ABORT, 'title and content are required');
			END
		`); err != nil {
			return fmt.Errorf("create notes_require_fields trigger: %w", err)
		}
	}

	return nil
}
