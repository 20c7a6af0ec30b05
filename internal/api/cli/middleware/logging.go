package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

// Command outcomes recorded by Logging.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Logging logs terminal commands and their results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleCommand logs command name, duration and outcome for each command.
// Arguments are not logged since they may carry file paths of patient data.
func (l *Logging) HandleCommand(next cli.HandlerFunc) cli.HandlerFunc {
	return func(ctx context.Context, req cli.Request) error {
		start := time.Now()

		l.logger.Debug("Command started",
			"command", req.Name,
			"start_time", start.Format(time.RFC3339))

		err := next(ctx, req)

		duration := time.Since(start)
		outcome := Outcome(err)

		l.logger.Info("Command completed",
			"command", req.Name,
			"duration_ms", duration.Milliseconds(),
			"outcome", outcome)

		if outcome == OutcomeFailed {
			l.logger.Error("Command failed",
				"command", req.Name,
				"error", err.Error())
		}

		return err
	}
}

// Outcome classifies err: user mistakes are rejected, everything else that
// is not nil failed.
func Outcome(err error) string {
	if err == nil || errors.Is(err, cli.ErrExit) {
		return OutcomeOK
	}

	var (
		validationErr *model.ValidationError
		usageErr      *cli.UsageError
		unknownErr    *cli.UnknownCommandError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &usageErr),
		errors.As(err, &unknownErr),
		errors.Is(err, model.ErrAlreadyExists),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrWrongPassword),
		errors.Is(err, model.ErrNotAuthenticated):
		return OutcomeRejected
	}

	return OutcomeFailed
}
