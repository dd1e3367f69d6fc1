package models

import "time"

// Message is a row of the messages table, either fetched or pushed by the
// realtime channel.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
