package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
)

// ProfileHistoryLimit is how many recent entries Profile returns.
const ProfileHistoryLimit = 10

type Analysis struct {
	userStore  model.UserStore
	storage    model.ArtifactStorage
	classifier model.Classifier
	logger     *logger.Logger
	now        func() time.Time
}

func NewAnalysis(
	userStore model.UserStore,
	storage model.ArtifactStorage,
	classifier model.Classifier,
	logger *logger.Logger,
) *Analysis {
	return &Analysis{
		userStore:  userStore,
		storage:    storage,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Analyze stores the uploaded image, classifies it and records the result.
// A classifier failure yields the unavailable label with zero confidence;
// a storage failure aborts the operation.
func (s *Analysis) Analyze(ctx context.Context, session model.Session, image io.Reader, originalName string) (model.HistoryEntry, error) {
	if !session.Authenticated() {
		return model.HistoryEntry{}, model.ErrNotAuthenticated
	}

	s.logger.Debug("Analysis service: storing upload",
		"username", session.Username,
		"original_name", originalName)

	filename, path, err := s.storage.Store(ctx, session.Username, image, originalName)
	if err != nil {
		s.logger.Error("Analysis service: failed to store artifact",
			"username", session.Username,
			"error", err.Error())
		return model.HistoryEntry{}, fmt.Errorf("failed to store artifact: %w", err)
	}

	return s.record(ctx, session, filename, path)
}

// Reanalyze classifies the artifact behind existing again and records the
// outcome as a new entry. The existing entry is left in place.
func (s *Analysis) Reanalyze(ctx context.Context, session model.Session, existing model.HistoryEntry) (model.HistoryEntry, error) {
	if !session.Authenticated() {
		return model.HistoryEntry{}, model.ErrNotAuthenticated
	}

	s.logger.Debug("Analysis service: re-analyzing artifact",
		"username", session.Username,
		"filename", existing.Filename)

	return s.record(ctx, session, existing.Filename, existing.FilePath)
}

func (s *Analysis) record(ctx context.Context, session model.Session, filename, path string) (model.HistoryEntry, error) {
	image, err := s.readArtifact(ctx, path)
	if err != nil {
		s.logger.Error("Analysis service: failed to read artifact",
			"username", session.Username,
			"path", path,
			"error", err.Error())
		return model.HistoryEntry{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	label, confidence := s.classify(ctx, session, image)

	entry := model.HistoryEntry{
		Filename:   filename,
		FilePath:   path,
		Timestamp:  s.now(),
		Label:      label,
		Confidence: confidence,
	}

	if err := s.userStore.AppendHistory(ctx, session.Username, entry); err != nil {
		s.logger.Error("Analysis service: failed to append history",
			"username", session.Username,
			"error", err.Error())
		return model.HistoryEntry{}, fmt.Errorf("failed to append history: %w", err)
	}

	s.logger.Info("Analysis service: analysis recorded",
		"username", session.Username,
		"filename", filename,
		"label", label,
		"confidence", confidence)

	return entry, nil
}

func (s *Analysis) readArtifact(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.storage.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	return data, nil
}

// classify never fails: any classifier error degrades to the unavailable
// label.
func (s *Analysis) classify(ctx context.Context, session model.Session, image []byte) (model.Label, float64) {
	label, confidence, err := s.classifier.Classify(ctx, image)
	if err != nil {
		s.logger.Warn("Analysis service: classification failed, recording degraded result",
			"username", session.Username,
			"unavailable", errors.Is(err, model.ErrClassifierUnavailable),
			"error", err.Error())
		return model.LabelUnavailable, 0
	}

	return label, roundConfidence(confidence)
}

// roundConfidence clamps c to [0,100] and rounds it to two decimals.
func roundConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 100 {
		c = 100
	}
	return math.Round(c*100) / 100
}

// Profile returns the user's account details with the most recent history.
func (s *Analysis) Profile(ctx context.Context, session model.Session) (model.Profile, error) {
	if !session.Authenticated() {
		return model.Profile{}, model.ErrNotAuthenticated
	}

	user, ok, err := s.userStore.GetUser(ctx, session.Username)
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !ok {
		return model.Profile{}, model.ErrNotFound
	}

	history := user.History
	if len(history) > ProfileHistoryLimit {
		history = history[:ProfileHistoryLimit]
	}

	return model.Profile{
		Username:  session.Username,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
		History:   history,
	}, nil
}
