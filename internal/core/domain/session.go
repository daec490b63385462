package domain

import "time"

// Session is the server-held proof of an authenticated identity. The user
// is a snapshot taken at sign-in and kept in step with role changes.
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticated reports whether the session carries a user. A nil session
// is anonymous.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// UserID returns the session's user ID, or "" for anonymous sessions.
func (s *Session) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.User.ID
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
