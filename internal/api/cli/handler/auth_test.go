package handler

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/heartcare-server/internal/api/cli"
	"github.com/dtroode/heartcare-server/internal/api/cli/session"
	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/testutil"
)

func TestAuth_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("username from argument", func(t *testing.T) {
		svc := &authServiceMock{}
		svc.On("Signup", mock.Anything, "alice", "p@ss1", "p@ss1", "Alice").Return(nil)
		prompter := &scriptedPrompter{answers: []string{"p@ss1", "p@ss1", "Alice"}}
		var out bytes.Buffer
		h := NewAuth(svc, session.NewHolder(), prompter, &out, testutil.MakeNoopLogger())

		err := h.Signup(ctx, cli.Request{Name: "signup", Args: []string{"alice"}})
		require.NoError(t, err)

		assert.Equal(t, []string{"Password: ", "Confirm password: "}, prompter.passwords)
		assert.Contains(t, out.String(), "Account created")
		svc.AssertExpectations(t)
	})

	t.Run("username prompted", func(t *testing.T) {
		svc := &authServiceMock{}
		svc.On("Signup", mock.Anything, "bob", "pw", "pw", "").Return(nil)
		prompter := &scriptedPrompter{answers: []string{"bob", "pw", "pw", ""}}
		h := NewAuth(svc, session.NewHolder(), prompter, &bytes.Buffer{}, testutil.MakeNoopLogger())

		require.NoError(t, h.Signup(ctx, cli.Request{Name: "signup"}))
		assert.Equal(t, "Username: ", prompter.prompts[0])
	})

	t.Run("service error does not log in", func(t *testing.T) {
		svc := &authServiceMock{}
		svc.On("Signup", mock.Anything, "alice", "pw", "pw", "").Return(model.ErrAlreadyExists)
		holder := session.NewHolder()
		var out bytes.Buffer
		h := NewAuth(svc, holder, &scriptedPrompter{answers: []string{"pw", "pw", ""}}, &out, testutil.MakeNoopLogger())

		err := h.Signup(ctx, cli.Request{Name: "signup", Args: []string{"alice"}})
		assert.ErrorIs(t, err, model.ErrAlreadyExists)
		assert.False(t, holder.Get().Authenticated())
		assert.Empty(t, out.String())
	})

	t.Run("too many arguments", func(t *testing.T) {
		h := NewAuth(&authServiceMock{}, session.NewHolder(), &scriptedPrompter{}, &bytes.Buffer{}, testutil.MakeNoopLogger())

		var usageErr *cli.UsageError
		assert.ErrorAs(t, h.Signup(ctx, cli.Request{Name: "signup", Args: []string{"a", "b"}}), &usageErr)
	})

	t.Run("input closed", func(t *testing.T) {
		h := NewAuth(&authServiceMock{}, session.NewHolder(), &scriptedPrompter{}, &bytes.Buffer{}, testutil.MakeNoopLogger())

		assert.Error(t, h.Signup(ctx, cli.Request{Name: "signup", Args: []string{"alice"}}))
	})
}

func TestAuth_LoginLogout(t *testing.T) {
	ctx := context.Background()
	s := model.NewSession("alice")

	svc := &authServiceMock{}
	svc.On("Login", mock.Anything, "alice", "p@ss1").Return(s, nil)
	svc.On("Login", mock.Anything, "alice", "wrong").Return(model.Session{}, model.ErrWrongPassword)
	svc.On("Logout", mock.Anything, s).Return(model.Session{})

	holder := session.NewHolder()
	prompter := &scriptedPrompter{}
	var out bytes.Buffer
	h := NewAuth(svc, holder, prompter, &out, testutil.MakeNoopLogger())

	prompter.answers = []string{"wrong"}
	err := h.Login(ctx, cli.Request{Name: "login", Args: []string{"alice"}})
	assert.ErrorIs(t, err, model.ErrWrongPassword)
	assert.False(t, holder.Get().Authenticated())

	prompter.answers = []string{"p@ss1"}
	require.NoError(t, h.Login(ctx, cli.Request{Name: "login", Args: []string{"alice"}}))
	assert.Equal(t, s, holder.Get())
	assert.Contains(t, out.String(), "Logged in as alice")

	require.NoError(t, h.Logout(ctx, cli.Request{Name: "logout"}))
	assert.False(t, holder.Get().Authenticated())
	assert.Contains(t, out.String(), "Logged out.")

	out.Reset()
	require.NoError(t, h.Logout(ctx, cli.Request{Name: "logout"}))
	assert.Contains(t, out.String(), "You are not logged in.")
	svc.AssertNumberOfCalls(t, "Logout", 1)
}
