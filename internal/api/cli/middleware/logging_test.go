package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/testutil"
)

func TestLogging_HandleCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handler     cli.HandlerFunc
		wantOutcome string
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req cli.Request) error {
				time.Sleep(10 * time.Millisecond)
				return nil
			},
			wantOutcome: OutcomeOK,
		},
		{
			name: "user error is rejected",
			handler: func(ctx context.Context, req cli.Request) error {
				return model.ErrWrongPassword
			},
			wantOutcome: OutcomeRejected,
		},
		{
			name: "other error fails",
			handler: func(ctx context.Context, req cli.Request) error {
				return errors.New("boom")
			},
			wantOutcome: OutcomeFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, buf := testutil.MakeBufferLogger()
			lg := NewLogging(log)

			err := lg.HandleCommand(tt.handler)(context.Background(), cli.Request{Name: "login", Args: []string{"alice"}})

			if tt.wantOutcome == OutcomeOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
			assert.Contains(t, buf.String(), "command=login")
			assert.Contains(t, buf.String(), "outcome="+tt.wantOutcome)
			assert.NotContains(t, buf.String(), "alice")
			if tt.wantOutcome == OutcomeFailed {
				assert.Contains(t, buf.String(), "Command failed")
			}
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeOK, Outcome(cli.ErrExit))
	assert.Equal(t, OutcomeRejected, Outcome(model.NewValidationError("username", "x")))
	assert.Equal(t, OutcomeRejected, Outcome(&cli.UsageError{Usage: "analyze <path>"}))
	assert.Equal(t, OutcomeRejected, Outcome(&cli.UnknownCommandError{Name: "fly"}))
	assert.Equal(t, OutcomeRejected, Outcome(fmt.Errorf("x: %w", model.ErrAlreadyExists)))
	assert.Equal(t, OutcomeRejected, Outcome(model.ErrNotFound))
	assert.Equal(t, OutcomeRejected, Outcome(model.ErrNotAuthenticated))
	assert.Equal(t, OutcomeFailed, Outcome(model.ErrStorage))
}
