// Package cli holds the types shared by the terminal front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrExit is returned by the exit command to stop the loop.
var ErrExit = errors.New("exit requested")

// Request is one parsed command line.
type Request struct {
	Name string
	Args []string
}

// ParseRequest splits line into a command name and its arguments. It
// reports false for a blank line.
func ParseRequest(line string) (Request, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, false
	}
	return Request{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// HandlerFunc executes a single command.
type HandlerFunc func(ctx context.Context, req Request) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Prompter reads interactive input from the user.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// UsageError reports a command invoked with bad arguments.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// UnknownCommandError reports a command name nothing is registered for.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}
