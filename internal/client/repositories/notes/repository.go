// Package notes persists the user's notes in the backend's notes table.
// Repositories talk to the table API with the signed-in user's token, so
// row level security decides which rows they see.
package notes

import (
	"context"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
)

type Repository interface {
	// ListByUser returns the user's notes, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
	// Create inserts n and fills in its generated id and creation time.
	Create(ctx context.Context, n *models.Note) error
	Update(ctx context.Context, id, title string, content *string) error
	Delete(ctx context.Context, id string) error
}
