// Package session keeps the terminal's current login and carries it through
// command contexts.
package session

import (
	"context"
	"sync"

	"github.com/dtroode/heartcare-server/internal/model"
)

type contextKey struct{}

// Holder stores the session of the terminal user. The zero value holds the
// anonymous session.
type Holder struct {
	mu      sync.RWMutex
	session model.Session
}

func NewHolder() *Holder {
	return &Holder{}
}

func (h *Holder) Get() model.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

func (h *Holder) Set(s model.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = s
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or the anonymous session.
func FromContext(ctx context.Context) model.Session {
	s, _ := ctx.Value(contextKey{}).(model.Session)
	return s
}
