package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notes/backend/internal/model"
	"notes/backend/pkg/snowflake"
)

type noteRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_notes_created_at,priority:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (noteRecord) TableName() string {
	return "notes"
}

func (r noteRecord) toModel() model.Note {
	return model.Note{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type gormNoteRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// MigrateNotes creates or updates the notes table on a gorm connection.
func MigrateNotes(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&noteRecord{}); err != nil {
		return fmt.Errorf("migrate notes: %w", err)
	}
	return nil
}

// NewGormNoteRepository creates a note repository over gorm (postgres).
// Missing records are reported as sql.ErrNoRows like the sqlite repository.
func NewGormNoteRepository(db *gorm.DB) NoteRepository {
	return &gormNoteRepository{db: db, now: time.Now}
}

func (r *gormNoteRepository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	now := r.now().UTC()
	rec := noteRecord{
		ID:        snowflake.NextID(),
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return rec.toModel(), nil
}

func (r *gormNoteRepository) List(ctx context.Context) ([]model.Note, error) {
	var recs []noteRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	notes := make([]model.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, rec.toModel())
	}
	return notes, nil
}

func (r *gormNoteRepository) GetByID(ctx context.Context, id int64) (model.Note, error) {
	var rec noteRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.Note{}, translateGormError(err)
	}
	return rec.toModel(), nil
}

func (r *gormNoteRepository) Update(ctx context.Context, note model.Note) (model.Note, error) {
	rec := noteRecord{ID: note.ID}
	result := r.db.WithContext(ctx).
		Model(&rec).
		Clauses(clause.Returning{}).
		Where("id = ?", note.ID).
		Updates(map[string]interface{}{
			"title":      note.Title,
			"content":    note.Content,
			"updated_at": r.now().UTC(),
		})
	if result.Error != nil {
		return model.Note{}, fmt.Errorf("update note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.Note{}, sql.ErrNoRows
	}
	return rec.toModel(), nil
}

func (r *gormNoteRepository) Delete(ctx context.Context, id int64) (model.Note, error) {
	var rec noteRecord
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&rec)
	if result.Error != nil {
		return model.Note{}, fmt.Errorf("delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.Note{}, sql.ErrNoRows
	}
	return rec.toModel(), nil
}

func (r *gormNoteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sql.ErrNoRows
	}
	return err
}
