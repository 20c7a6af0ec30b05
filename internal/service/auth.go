package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

// Validation error fields reported by Signup.
const (
	FieldCredentials = "credentials"
	FieldUsername    = "username"
	FieldPassword    = "password"
)

type Auth struct {
	userStore model.UserStore
	logger    *logger.Logger
}

func NewAuth(userStore model.UserStore, logger *logger.Logger) *Auth {
	return &Auth{
		userStore: userStore,
		logger:    logger,
	}
}

// Signup validates the form and creates the account. It does not log the
// user in.
func (a *Auth) Signup(ctx context.Context, username, password, confirm, fullName string) error {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)

	a.logger.Debug("Auth service: starting signup",
		"username", username)

	if err := validateSignup(username, password, confirm); err != nil {
		a.logger.Info("Auth service: signup rejected",
			"username", username,
			"reason", err.Error())
		return err
	}

	err := a.userStore.CreateUser(ctx, username, password, fullName)
	if errors.Is(err, model.ErrAlreadyExists) {
		a.logger.Info("Auth service: user already exists",
			"username", username)
		return err
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"username", username,
			"error", err.Error())
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: signup completed successfully",
		"username", username)

	return nil
}

func validateSignup(username, password, confirm string) error {
	if username == "" || password == "" {
		return model.NewValidationError(FieldCredentials, "username and password are required")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return model.NewValidationError(FieldUsername, "must not contain whitespace")
	}
	if password != confirm {
		return model.NewValidationError(FieldPassword, "passwords do not match")
	}
	return nil
}

// Login checks the credentials and returns a new session on success.
func (a *Auth) Login(ctx context.Context, username, password string) (model.Session, error) {
	username = strings.TrimSpace(username)

	a.logger.Debug("Auth service: starting login",
		"username", username)

	err := a.userStore.VerifyUser(ctx, username, password)
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrWrongPassword) {
		a.logger.Info("Auth service: login rejected",
			"username", username,
			"reason", err.Error())
		return model.Session{}, err
	}
	if err != nil {
		a.logger.Error("Auth service: failed to verify user",
			"username", username,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to verify user: %w", err)
	}

	session := model.NewSession(username)

	a.logger.Info("Auth service: login completed successfully",
		"username", username,
		"session_id", session.ID)

	return session, nil
}

// Logout ends session and returns the anonymous session.
func (a *Auth) Logout(_ context.Context, session model.Session) model.Session {
	if session.Authenticated() {
		a.logger.Info("Auth service: user logged out",
			"username", session.Username,
			"session_id", session.ID)
	}
	return model.Session{}
}

// UserMessage renders err as the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Field {
		case FieldCredentials:
			return "Please enter a username and password."
		case FieldUsername:
			return "Username cannot contain spaces."
		case FieldPassword:
			return "Passwords do not match."
		}
		return fmt.Sprintf("Invalid %s.", validationErr.Field)
	}

	switch {
	case errors.Is(err, model.ErrAlreadyExists):
		return "Username already exists."
	case errors.Is(err, model.ErrNotFound):
		return "Username not found."
	case errors.Is(err, model.ErrWrongPassword):
		return "Incorrect password."
	case errors.Is(err, model.ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, model.ErrStorage):
		return "Could not save your data. Please try again."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The request was cancelled."
	}

	return "Something went wrong."
}
