//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"notes/backend/internal/model"
	"notes/backend/internal/repository"
	"notes/backend/pkg/logger"
)

type NoteService interface {
	List(ctx context.Context) ([]model.Note, error)
	Get(ctx context.Context, id int64) (model.Note, error)
	Create(ctx context.Context, title, content string) (model.Note, error)
	Update(ctx context.Context, id int64, title, content string) (model.Note, error)
	Delete(ctx context.Context, id int64) (model.Note, error)
}

type noteService struct {
	notes repository.NoteRepository
}

func NewNoteService(notes repository.NoteRepository) NoteService {
	return &noteService{notes: notes}
}

func (s *noteService) List(ctx context.Context) ([]model.Note, error) {
	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *noteService) Get(ctx context.Context, id int64) (model.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

func (s *noteService) Create(ctx context.Context, title, content string) (model.Note, error) {
	title, content, err := normalizeNote(title, content)
	if err != nil {
		return model.Note{}, err
	}

	note, err := s.notes.Create(ctx, model.Note{Title: title, Content: content})
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	logger.Info("note created", "module", "service", "action", "create", "resource", "note", "result", "ok", "note_id", note.ID)
	return note, nil
}

func (s *noteService) Update(ctx context.Context, id int64, title, content string) (model.Note, error) {
	title, content, err := normalizeNote(title, content)
	if err != nil {
		return model.Note{}, err
	}

	note, err := s.notes.Update(ctx, model.Note{ID: id, Title: title, Content: content})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, fmt.Errorf("update note: %w", err)
	}
	logger.Info("note updated", "module", "service", "action", "update", "resource", "note", "result", "ok", "note_id", note.ID)
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, id int64) (model.Note, error) {
	note, err := s.notes.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, fmt.Errorf("delete note: %w", err)
	}
	logger.Info("note deleted", "module", "service", "action", "delete", "resource", "note", "result", "ok", "note_id", note.ID)
	return note, nil
}

// normalizeNote rejects notes missing either field.
// Both fields are stored verbatim.
func normalizeNote(title, content string) (string, string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return "", "", ErrInvalid
	}
	return title, content, nil
}
