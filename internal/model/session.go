package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is the caller-held proof of a successful login.
// The zero value is the anonymous session.
type Session struct {
	ID        uuid.UUID
	Username  string
	StartedAt time.Time
}

// NewSession starts a session for username.
func NewSession(username string) Session {
	return Session{
		ID:        uuid.New(),
		Username:  username,
		StartedAt: time.Now(),
	}
}

// Authenticated reports whether the session belongs to a user.
func (s Session) Authenticated() bool {
	return s.Username != ""
}
