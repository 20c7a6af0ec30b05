package model

import (
	"context"
	"time"
)

// HistoryLimit is the maximum number of history entries kept per user.
const HistoryLimit = 50

// UserStore defines persistence operations for user accounts and their
// analysis history.
type UserStore interface {
	EnsureInitialized(ctx context.Context) error
	CreateUser(ctx context.Context, username, password, fullName string) error
	VerifyUser(ctx context.Context, username, password string) error
	AppendHistory(ctx context.Context, username string, entry HistoryEntry) error
	GetUser(ctx context.Context, username string) (UserRecord, bool, error)
}

// Database is the persisted document holding every account.
type Database struct {
	Users map[string]UserRecord `json:"users"`
}

// NewDatabase returns an empty database document.
func NewDatabase() Database {
	return Database{Users: map[string]UserRecord{}}
}

// UserRecord represents a stored account with credentials and history.
type UserRecord struct {
	FullName     string         `json:"full_name"`
	Salt         string         `json:"salt"`
	PasswordHash string         `json:"pwd_hash"`
	CreatedAt    time.Time      `json:"created_at"`
	History      []HistoryEntry `json:"history"`
}

// HistoryEntry is one recorded classification attempt.
type HistoryEntry struct {
	Filename   string    `json:"filename"`
	FilePath   string    `json:"filepath"`
	Timestamp  time.Time `json:"timestamp"`
	Label      Label     `json:"label"`
	Confidence float64   `json:"confidence"`
}

// PrependHistory inserts entry at the front of history and drops everything
// past HistoryLimit. The input slice is not modified.
func PrependHistory(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	n := min(len(history)+1, HistoryLimit)
	out := make([]HistoryEntry, 0, n)
	out = append(out, entry)
	out = append(out, history[:n-1]...)
	return out
}

// Profile is the read model shown on the profile page.
type Profile struct {
	Username  string
	FullName  string
	CreatedAt time.Time
	History   []HistoryEntry
}
