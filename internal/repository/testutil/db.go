package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"notes/backend/internal/db"
	"notes/backend/internal/model"
	"notes/backend/pkg/snowflake"

	_ "modernc.org/sqlite"
)

// snowflakeOnce initializes snowflake once across parallel tests.
var snowflakeOnce sync.Once

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	snowflakeOnce.Do(func() {
		if err := snowflake.Init(0); err != nil {
			panic("failed to initialize snowflake: " + err.Error())
		}
	})

	// Shared cache keeps the in-memory database alive across pooled
	// connections; the unique name isolates tests from each other.
	dbName := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", sanitizeName(t.Name()), time.Now().UnixNano())
	database, err := sql.Open("sqlite", dbName)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		database.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

// SeedNote inserts a note with explicit timestamps and returns it with its ID.
func SeedNote(t *testing.T, database *sql.DB, title, content string, createdAt time.Time) model.Note {
	t.Helper()

	note := model.Note{
		ID:        snowflake.NextID(),
		Title:     title,
		Content:   content,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	stamp := note.CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00")

	_, err := database.ExecContext(
		context.Background(),
		`INSERT INTO notes (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, stamp, stamp,
	)
	if err != nil {
		t.Fatalf("failed to seed note: %v", err)
	}

	return note
}

// CountNotes returns the number of stored notes.
func CountNotes(t *testing.T, database *sql.DB) int {
	t.Helper()

	var count int
	if err := database.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("failed to count notes: %v", err)
	}
	return count
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
