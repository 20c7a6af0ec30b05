package middleware

import (
	"context"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

// Authenticate rejects commands from an anonymous terminal and passes the
// current session to the handler through the context.
type Authenticate struct {
	holder *session.Holder
	logger *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(holder *session.Holder, logger *logger.Logger) *Authenticate {
	return &Authenticate{holder: holder, logger: logger}
}

func (m *Authenticate) HandleCommand(next cli.HandlerFunc) cli.HandlerFunc {
	return func(ctx context.Context, req cli.Request) error {
		s := m.holder.Get()
		if !s.Authenticated() {
			m.logger.Debug("Authenticate: anonymous command rejected", "command", req.Name)
			return model.ErrNotAuthenticated
		}

		return next(session.NewContext(ctx, s), req)
	}
}
