package handler

import (
	"context"
	"errors"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/heartcare-server/internal/model"
)

type authServiceMock struct {
	mock.Mock
}

func (m *authServiceMock) Signup(ctx context.Context, username, password, confirm, fullName string) error {
	return m.Called(ctx, username, password, confirm, fullName).Error(0)
}

func (m *authServiceMock) Login(ctx context.Context, username, password string) (model.Session, error) {
	ret := m.Called(ctx, username, password)
	return ret.Get(0).(model.Session), ret.Error(1)
}

func (m *authServiceMock) Logout(ctx context.Context, session model.Session) model.Session {
	return m.Called(ctx, session).Get(0).(model.Session)
}

type analysisServiceMock struct {
	mock.Mock
}

func (m *analysisServiceMock) Analyze(ctx context.Context, session model.Session, image io.Reader, originalName string) (model.HistoryEntry, error) {
	ret := m.Called(ctx, session, image, originalName)
	return ret.Get(0).(model.HistoryEntry), ret.Error(1)
}

func (m *analysisServiceMock) Reanalyze(ctx context.Context, session model.Session, existing model.HistoryEntry) (model.HistoryEntry, error) {
	ret := m.Called(ctx, session, existing)
	return ret.Get(0).(model.HistoryEntry), ret.Error(1)
}

func (m *analysisServiceMock) Profile(ctx context.Context, session model.Session) (model.Profile, error) {
	ret := m.Called(ctx, session)
	return ret.Get(0).(model.Profile), ret.Error(1)
}

// scriptedPrompter answers prompts from a fixed list and records them.
type scriptedPrompter struct {
	answers   []string
	prompts   []string
	passwords []string
}

func (p *scriptedPrompter) next(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", errors.New("no more input")
	}
	v := p.answers[0]
	p.answers = p.answers[1:]
	return v, nil
}

func (p *scriptedPrompter) ReadLine(prompt string) (string, error) {
	return p.next(prompt)
}

func (p *scriptedPrompter) ReadPassword(prompt string) (string, error) {
	p.passwords = append(p.passwords, prompt)
	return p.next(prompt)
}
