//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notes/backend/internal/model"
	"notes/backend/pkg/snowflake"
)

// NoteRepository is the document store for notes. Lookups of unknown IDs
// return sql.ErrNoRows.
type NoteRepository interface {
	Create(ctx context.Context, note model.Note) (model.Note, error)
	List(ctx context.Context) ([]model.Note, error)
	GetByID(ctx context.Context, id int64) (model.Note, error)
	Update(ctx context.Context, note model.Note) (model.Note, error)
	Delete(ctx context.Context, id int64) (model.Note, error)
	Ping(ctx context.Context) error
}

const noteColumns = `id, title, content, created_at, updated_at`

type noteRepository struct {
	db  dbtx
	raw *sql.DB
	now func() time.Time
}

// NewNoteRepository creates a sqlite backed note repository.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db, raw: db, now: time.Now}
}

func (r *noteRepository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	now := r.now().UTC()
	note.ID = snowflake.NextID()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.Title, note.Content, formatTime(now), formatTime(now))
	if err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return note, nil
}

func (r *noteRepository) List(ctx context.Context) ([]model.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) GetByID(ctx context.Context, id int64) (model.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	return scanNote(row)
}

// Update replaces title and content in a single statement, so a missing ID
// never leaves a partial write behind.
func (r *noteRepository) Update(ctx context.Context, note model.Note) (model.Note, error) {
	now := r.now().UTC()
	row := r.db.QueryRowContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?
		RETURNING `+noteColumns,
		note.Title, note.Content, formatTime(now), note.ID)
	return scanNote(row)
}

func (r *noteRepository) Delete(ctx context.Context, id int64) (model.Note, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM notes WHERE id = ? RETURNING `+noteColumns, id)
	return scanNote(row)
}

func (r *noteRepository) Ping(ctx context.Context) error {
	return r.raw.PingContext(ctx)
}

func scanNote(row rowScanner) (model.Note, error) {
	var note model.Note
	var createdAt, updatedAt string
	if err := row.Scan(&note.ID, &note.Title, &note.Content, &createdAt, &updatedAt); err != nil {
		return model.Note{}, err
	}

	var err error
	if note.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Note{}, fmt.Errorf("parse created_at: %w", err)
	}
	if note.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Note{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return note, nil
}
