// Package messages persists chat messages in the backend's messages table
// through the table API.
package messages

import (
	"context"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
)

type Repository interface {
	// ListRecent returns up to limit of the most recent messages, oldest first.
	ListRecent(ctx context.Context, limit int) ([]models.Message, error)
	// Create inserts m and fills in its generated id and creation time.
	Create(ctx context.Context, m *models.Message) error
}
