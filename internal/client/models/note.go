package models

import "time"

// Note is a row of the notes table. Content is optional.
type Note struct {
	ID        string
	Title     string
	Content   *string
	UserID    string
	CreatedAt time.Time
}

// ContentText returns the content or "" when absent.
func (n Note) ContentText() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}
