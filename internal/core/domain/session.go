package domain

import "time"

// Session is the server-held record behind a session token. It is keyed by
// the SHA-256 of the session ID so a leaked store can't be replayed.
type Session struct {
	IDHash    string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpiredAt reports whether the session would be expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
