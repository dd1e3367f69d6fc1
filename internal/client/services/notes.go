package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/repositories/notes"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// NoteService manages the signed-in user's notes.
type NoteService interface {
	// List returns the user's notes, newest first.
	List(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, title, content string) (*models.Note, error)
	Update(ctx context.Context, id, title, content string) error
	Delete(ctx context.Context, id string) error
}

type noteService struct {
	tables   client.Tables
	sessions SessionSource
	newRepo  func(*postgrest.Client) notes.Repository
}

func NewNoteService(tables client.Tables, sessions SessionSource) NoteService {
	return &noteService{
		tables:   tables,
		sessions: sessions,
		newRepo:  func(tc *postgrest.Client) notes.Repository { return notes.NewRESTRepository(tc) },
	}
}

// scoped runs fn as the signed-in user, with the user's own token.
func (s *noteService) scoped(ctx context.Context, fn func(ctx context.Context, userID string, repo notes.Repository) error) error {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	tc, done := s.tables.As(ctx, sess.AccessToken)
	defer done()
	return fn(ctx, sess.User.ID, s.newRepo(tc))
}

func (s *noteService) List(ctx context.Context) ([]models.Note, error) {
	var result []models.Note
	err := s.scoped(ctx, func(ctx context.Context, userID string, repo notes.Repository) error {
		var err error
		result, err = repo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return result, nil
}

func (s *noteService) Create(ctx context.Context, title, content string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	var n *models.Note
	err := s.scoped(ctx, func(ctx context.Context, userID string, repo notes.Repository) error {
		n = &models.Note{Title: title, Content: &content, UserID: userID}
		return repo.Create(ctx, n)
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

func (s *noteService) Update(ctx context.Context, id, title, content string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := s.scoped(ctx, func(ctx context.Context, _ string, repo notes.Repository) error {
		return repo.Update(ctx, id, title, &content)
	})
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := s.scoped(ctx, func(ctx context.Context, _ string, repo notes.Repository) error {
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
