package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/service"
)

// Dispatcher runs one command line.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) error
}

// REPL reads commands from a terminal until exit or end of input.
type REPL struct {
	mux      Dispatcher
	terminal *Terminal
	holder   *session.Holder
	out      io.Writer
	logger   *logger.Logger
}

// NewREPL creates a REPL with given dispatcher and terminal.
func NewREPL(mux Dispatcher, terminal *Terminal, holder *session.Holder, out io.Writer, logger *logger.Logger) *REPL {
	return &REPL{
		mux:      mux,
		terminal: terminal,
		holder:   holder,
		out:      out,
		logger:   logger,
	}
}

// Start runs the loop. It returns nil on exit or end of input, and the
// context error once ctx is done.
func (s *REPL) Start(ctx context.Context) error {
	fmt.Fprintln(s.out, "HeartCare ECG analyzer. Type help for a list of commands.")
	fmt.Fprintln(s.out, "Demo auth: credentials are stored locally. Use real auth in production.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.terminal.ReadLine(s.prompt())
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		err = s.mux.Dispatch(ctx, line)
		if errors.Is(err, cli.ErrExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, s.message(err))
		}
	}
}

func (s *REPL) prompt() string {
	if current := s.holder.Get(); current.Authenticated() {
		return current.Username + "> "
	}
	return "> "
}

func (s *REPL) message(err error) string {
	var (
		usageErr   *cli.UsageError
		unknownErr *cli.UnknownCommandError
	)
	switch {
	case errors.As(err, &usageErr):
		return "Usage: " + usageErr.Usage
	case errors.As(err, &unknownErr):
		return fmt.Sprintf("Unknown command %q. Type help for a list of commands.", unknownErr.Name)
	case errors.Is(err, fs.ErrNotExist):
		return "File not found."
	}
	return service.UserMessage(err)
}
