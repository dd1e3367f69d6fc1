package messages

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/supabase-community/postgrest-go"
)

const (
	table   = "messages"
	columns = "id,content,user_id,created_at"
)

// RESTRepository implements Repository over a PostgREST client.
type RESTRepository struct {
	tc *postgrest.Client
}

func NewRESTRepository(tc *postgrest.Client) *RESTRepository {
	return &RESTRepository{tc: tc}
}

type messageInsert struct {
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// ListRecent fetches the newest limit messages and returns them oldest
// first.
func (r *RESTRepository) ListRecent(_ context.Context, limit int) ([]models.Message, error) {
	result := make([]models.Message, 0, limit)
	_, err := r.tc.From(table).
		Select(columns, "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	slices.Reverse(result)
	return result, nil
}

func (r *RESTRepository) Create(_ context.Context, m *models.Message) error {
	var rows []models.Message
	_, err := r.tc.From(table).
		Insert(messageInsert{Content: m.Content, UserID: m.UserID}, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("failed to insert message: no row returned")
	}
	m.ID, m.CreatedAt = rows[0].ID, rows[0].CreatedAt
	return nil
}
