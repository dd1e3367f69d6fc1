package models

import "time"

// User is the authenticated identity carried by a Session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the auth session issued by the backend.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is expired at now, treating
// tokens within skew of their expiry as already expired. A zero ExpiresAt
// never expires.
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(s.ExpiresAt)
}
