package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/supabase-community/postgrest-go"
)

const (
	table   = "notes"
	columns = "id,title,content,user_id,created_at"
)

var newestFirst = &postgrest.OrderOpts{Ascending: false}

// RESTRepository implements Repository over a PostgREST client. The
// context is carried by the client itself.
type RESTRepository struct {
	tc *postgrest.Client
}

func NewRESTRepository(tc *postgrest.Client) *RESTRepository {
	return &RESTRepository{tc: tc}
}

type noteRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r noteRow) note() models.Note {
	return models.Note{ID: r.ID, Title: r.Title, Content: r.Content, UserID: r.UserID, CreatedAt: r.CreatedAt}
}

type noteInsert struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
	UserID  string  `json:"user_id"`
}

type noteUpdate struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

func (r *RESTRepository) ListByUser(_ context.Context, userID string) ([]models.Note, error) {
	var rows []noteRow
	_, err := r.tc.From(table).
		Select(columns, "", false).
		Eq("user_id", userID).
		Order("created_at", newestFirst).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}

	result := make([]models.Note, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.note())
	}
	return result, nil
}

func (r *RESTRepository) Create(_ context.Context, n *models.Note) error {
	var rows []noteRow
	_, err := r.tc.From(table).
		Insert(noteInsert{Title: n.Title, Content: n.Content, UserID: n.UserID}, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("failed to insert note: no row returned")
	}
	n.ID, n.CreatedAt = rows[0].ID, rows[0].CreatedAt
	return nil
}

// Update changes the title and content of note id. Rows hidden by row level
// security are not an error, they are simply not updated.
func (r *RESTRepository) Update(_ context.Context, id, title string, content *string) error {
	_, _, err := r.tc.From(table).
		Update(noteUpdate{Title: title, Content: content}, "minimal", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

func (r *RESTRepository) Delete(_ context.Context, id string) error {
	_, _, err := r.tc.From(table).
		Delete("minimal", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
