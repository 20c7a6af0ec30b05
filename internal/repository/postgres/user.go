package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/password"
)

var _ model.UserStore = (*UserRepository)(nil)

// querier is the subset of *pgxpool.Pool the repository uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type migrator interface {
	Migrate(ctx context.Context) error
}

type UserRepository struct {
	db       querier
	migrator migrator
	storage  model.ArtifactStorage
	logger   *logger.Logger
	now      func() time.Time
}

func NewUserRepository(db *Connection, storage model.ArtifactStorage, logger *logger.Logger) *UserRepository {
	return &UserRepository{
		db:       db,
		migrator: db,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureInitialized applies pending migrations.
func (r *UserRepository) EnsureInitialized(ctx context.Context) error {
	if err := r.migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}
	return nil
}

func (r *UserRepository) CreateUser(ctx context.Context, username, pwd, fullName string) error {
	salt, err := password.NewSalt()
	if err != nil {
		return err
	}

	query := `INSERT INTO users (username, full_name, salt, pwd_hash, created_at, history)
			  VALUES ($1, $2, $3, $4, $5, '[]'::jsonb)
			  ON CONFLICT (username) DO NOTHING`

	tag, err := r.db.Exec(ctx, query, username, fullName, salt, password.Hash(salt, pwd), r.now())
	if err != nil {
		return fmt.Errorf("%w: failed to create user: %w", model.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAlreadyExists
	}

	r.logger.Info("User store: user created", "username", username)

	if err := r.storage.Provision(ctx, username); err != nil {
		r.logger.Warn("User store: failed to provision upload namespace",
			"username", username,
			"error", err.Error())
	}

	return nil
}

func (r *UserRepository) VerifyUser(ctx context.Context, username, pwd string) error {
	user, ok, err := r.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotFound
	}

	if !password.Verify(user.Salt, pwd, user.PasswordHash) {
		return model.ErrWrongPassword
	}

	return nil
}

// AppendHistory prepends entry under a row lock so concurrent appends for
// the same user are serialised. Unknown users are ignored.
func (r *UserRepository) AppendHistory(ctx context.Context, username string, entry model.HistoryEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT history FROM users WHERE username = $1 FOR UPDATE`, username).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Warn("User store: history append for unknown user ignored", "username", username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to lock history: %w", model.ErrStorage, err)
	}

	history, err := decodeHistory(raw)
	if err != nil {
		return err
	}

	data, err := json.Marshal(model.PrependHistory(history, entry))
	if err != nil {
		return fmt.Errorf("%w: failed to encode history: %w", model.ErrStorage, err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET history = $2 WHERE username = $1`, username, string(data)); err != nil {
		return fmt.Errorf("%w: failed to update history: %w", model.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit history: %w", model.ErrStorage, err)
	}

	return nil
}

func (r *UserRepository) GetUser(ctx context.Context, username string) (model.UserRecord, bool, error) {
	query := `SELECT full_name, salt, pwd_hash, created_at, history
			  FROM users WHERE username = $1`

	var (
		user model.UserRecord
		raw  []byte
	)
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.FullName, &user.Salt, &user.PasswordHash, &user.CreatedAt, &raw,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UserRecord{}, false, nil
	}
	if err != nil {
		return model.UserRecord{}, false, fmt.Errorf("%w: failed to get user: %w", model.ErrStorage, err)
	}

	user.History, err = decodeHistory(raw)
	if err != nil {
		return model.UserRecord{}, false, err
	}

	return user, true, nil
}

func decodeHistory(raw []byte) ([]model.HistoryEntry, error) {
	history := []model.HistoryEntry{}
	if len(raw) == 0 {
		return history, nil
	}
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("%w: failed to decode history: %w", model.ErrStorage, err)
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return history, nil
}
