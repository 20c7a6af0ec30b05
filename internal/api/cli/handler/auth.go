package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

// AuthService defines account registration and login operations.
type AuthService interface {
	Signup(ctx context.Context, username, password, confirm, fullName string) error
	Login(ctx context.Context, username, password string) (model.Session, error)
	Logout(ctx context.Context, session model.Session) model.Session
}

// Auth handles the signup, login and logout commands.
type Auth struct {
	authService AuthService
	holder      *session.Holder
	prompter    cli.Prompter
	out         io.Writer
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, holder *session.Holder, prompter cli.Prompter, out io.Writer, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		holder:      holder,
		prompter:    prompter,
		out:         out,
		logger:      logger,
	}
}

// Signup asks for the account details and creates the account.
// Usage: signup [username]
func (h *Auth) Signup(ctx context.Context, req cli.Request) error {
	if len(req.Args) > 1 {
		return &cli.UsageError{Usage: "signup [username]"}
	}

	username, err := h.argOrPrompt(req, "Username: ")
	if err != nil {
		return err
	}
	password, err := h.prompter.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := h.prompter.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fullName, err := h.prompter.ReadLine("Full name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read full name: %w", err)
	}

	if err := h.authService.Signup(ctx, username, password, confirm, fullName); err != nil {
		return err
	}

	fmt.Fprintln(h.out, "Account created. Please log in.")
	return nil
}

// Login asks for the password and stores the new session.
// Usage: login [username]
func (h *Auth) Login(ctx context.Context, req cli.Request) error {
	if len(req.Args) > 1 {
		return &cli.UsageError{Usage: "login [username]"}
	}

	username, err := h.argOrPrompt(req, "Username: ")
	if err != nil {
		return err
	}
	password, err := h.prompter.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	s, err := h.authService.Login(ctx, username, password)
	if err != nil {
		return err
	}

	h.holder.Set(s)
	fmt.Fprintf(h.out, "Logged in as %s\n", s.Username)
	return nil
}

// Logout drops the current session.
func (h *Auth) Logout(ctx context.Context, _ cli.Request) error {
	current := h.holder.Get()
	if !current.Authenticated() {
		fmt.Fprintln(h.out, "You are not logged in.")
		return nil
	}

	h.holder.Set(h.authService.Logout(ctx, current))
	fmt.Fprintln(h.out, "Logged out.")
	return nil
}

func (h *Auth) argOrPrompt(req cli.Request, prompt string) (string, error) {
	if len(req.Args) == 1 {
		return req.Args[0], nil
	}
	v, err := h.prompter.ReadLine(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return v, nil
}
