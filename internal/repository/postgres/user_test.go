package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/heartcare-server/internal/mocks"
	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/password"
	"github.com/dtroode/heartcare-server/internal/testutil"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeTx struct {
	pgx.Tx

	row       fakeRow
	execErr   error
	execArgs  []any
	commitErr error

	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return t.row
}

func (t *fakeTx) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	t.execArgs = args
	return pgconn.NewCommandTag("UPDATE 1"), t.execErr
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = t.commitErr == nil
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	execTag  pgconn.CommandTag
	execErr  error
	execArgs []any

	row fakeRow

	tx       *fakeTx
	beginErr error
}

func (d *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	d.execArgs = args
	return d.execTag, d.execErr
}

func (d *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return d.row
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

type fakeMigrator struct{ err error }

func (m fakeMigrator) Migrate(context.Context) error { return m.err }

func newRepo(db *fakeDB) (*UserRepository, *mocks.ArtifactStorage) {
	storage := &mocks.ArtifactStorage{}
	storage.On("Provision", mock.Anything, mock.Anything).Return(nil).Maybe()
	return &UserRepository{
		db:       db,
		migrator: fakeMigrator{},
		storage:  storage,
		logger:   testutil.MakeNoopLogger(),
		now:      func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, storage
}

func userRow(salt, pwd string, history string) fakeRow {
	return fakeRow{values: []any{
		"Alice",
		salt,
		password.Hash(salt, pwd),
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		[]byte(history),
	}}
}

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db, &mocks.ArtifactStorage{}, testutil.MakeNoopLogger())

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, db, repo.migrator)
}

func TestUserRepository_EnsureInitialized(t *testing.T) {
	repo, _ := newRepo(&fakeDB{})
	assert.NoError(t, repo.EnsureInitialized(context.Background()))

	repo.migrator = fakeMigrator{err: errors.New("dirty database")}
	assert.ErrorIs(t, repo.EnsureInitialized(context.Background()), model.ErrStorage)
}

func TestUserRepository_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
		repo, storage := newRepo(db)

		require.NoError(t, repo.CreateUser(ctx, "alice", "p@ss1", "Alice"))

		require.Len(t, db.execArgs, 5)
		assert.Equal(t, "alice", db.execArgs[0])
		assert.Equal(t, "Alice", db.execArgs[1])
		salt := db.execArgs[2].(string)
		assert.Len(t, salt, password.SaltSize*2)
		assert.Equal(t, password.Hash(salt, "p@ss1"), db.execArgs[3])
		storage.AssertCalled(t, "Provision", mock.Anything, "alice")
	})

	t.Run("already exists", func(t *testing.T) {
		db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 0")}
		repo, storage := newRepo(db)

		err := repo.CreateUser(ctx, "alice", "p@ss1", "")
		assert.ErrorIs(t, err, model.ErrAlreadyExists)
		storage.AssertNotCalled(t, "Provision", mock.Anything, mock.Anything)
	})

	t.Run("database error", func(t *testing.T) {
		db := &fakeDB{execErr: errors.New("connection refused")}
		repo, _ := newRepo(db)

		err := repo.CreateUser(ctx, "alice", "p@ss1", "")
		assert.ErrorIs(t, err, model.ErrStorage)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestUserRepository_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db := &fakeDB{row: userRow("abcd", "pw", `[{"filename":"f.png","filepath":"p/f.png","timestamp":"2025-01-02T03:04:05Z","label":"Normal ECG","confidence":91.5}]`)}
		repo, _ := newRepo(db)

		user, ok, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Alice", user.FullName)
		require.Len(t, user.History, 1)
		assert.Equal(t, model.LabelNormal, user.History[0].Label)
		assert.Equal(t, 91.5, user.History[0].Confidence)
	})

	t.Run("null history", func(t *testing.T) {
		db := &fakeDB{row: userRow("abcd", "pw", `null`)}
		repo, _ := newRepo(db)

		user, ok, err := repo.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotNil(t, user.History)
		assert.Empty(t, user.History)
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		repo, _ := newRepo(db)

		_, ok, err := repo.GetUser(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt history", func(t *testing.T) {
		db := &fakeDB{row: userRow("abcd", "pw", `{`)}
		repo, _ := newRepo(db)

		_, _, err := repo.GetUser(ctx, "alice")
		assert.ErrorIs(t, err, model.ErrStorage)
	})
}

func TestUserRepository_VerifyUser(t *testing.T) {
	ctx := context.Background()

	repo, _ := newRepo(&fakeDB{row: userRow("abcd", "p@ss1", `[]`)})
	assert.NoError(t, repo.VerifyUser(ctx, "alice", "p@ss1"))
	assert.ErrorIs(t, repo.VerifyUser(ctx, "alice", "wrong"), model.ErrWrongPassword)

	repo, _ = newRepo(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})
	assert.ErrorIs(t, repo.VerifyUser(ctx, "bob", "x"), model.ErrNotFound)
}

func historyJSON(t *testing.T, n int) []byte {
	t.Helper()
	history := make([]model.HistoryEntry, n)
	for i := range history {
		history[i] = model.HistoryEntry{
			Filename:  fmt.Sprintf("f%02d.png", n-i),
			Timestamp: time.Date(2025, 1, 1, 0, 0, n-i, 0, time.UTC),
			Label:     model.LabelNormal,
		}
	}
	data, err := json.Marshal(history)
	require.NoError(t, err)
	return data
}

func TestUserRepository_AppendHistory(t *testing.T) {
	ctx := context.Background()
	entry := model.HistoryEntry{
		Filename:  "new.png",
		Timestamp: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Label:     model.LabelAbnormalHeartbeat,
	}

	t.Run("prepends and caps", func(t *testing.T) {
		tx := &fakeTx{row: fakeRow{values: []any{historyJSON(t, model.HistoryLimit)}}}
		repo, _ := newRepo(&fakeDB{tx: tx})

		require.NoError(t, repo.AppendHistory(ctx, "alice", entry))
		assert.True(t, tx.committed)

		require.Len(t, tx.execArgs, 2)
		var stored []model.HistoryEntry
		require.NoError(t, json.Unmarshal([]byte(tx.execArgs[1].(string)), &stored))
		require.Len(t, stored, model.HistoryLimit)
		assert.Equal(t, "new.png", stored[0].Filename)
		assert.Equal(t, "f50.png", stored[1].Filename)
		assert.Equal(t, "f02.png", stored[model.HistoryLimit-1].Filename)
	})

	t.Run("unknown user", func(t *testing.T) {
		tx := &fakeTx{row: fakeRow{err: pgx.ErrNoRows}}
		repo, _ := newRepo(&fakeDB{tx: tx})

		require.NoError(t, repo.AppendHistory(ctx, "ghost", entry))
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
		assert.Nil(t, tx.execArgs)
	})

	t.Run("begin fails", func(t *testing.T) {
		repo, _ := newRepo(&fakeDB{beginErr: errors.New("pool closed")})

		assert.ErrorIs(t, repo.AppendHistory(ctx, "alice", entry), model.ErrStorage)
	})

	t.Run("update fails", func(t *testing.T) {
		tx := &fakeTx{
			row:     fakeRow{values: []any{[]byte(`[]`)}},
			execErr: errors.New("serialization failure"),
		}
		repo, _ := newRepo(&fakeDB{tx: tx})

		assert.ErrorIs(t, repo.AppendHistory(ctx, "alice", entry), model.ErrStorage)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})

	t.Run("commit fails", func(t *testing.T) {
		tx := &fakeTx{
			row:       fakeRow{values: []any{[]byte(`[]`)}},
			commitErr: errors.New("conn lost"),
		}
		repo, _ := newRepo(&fakeDB{tx: tx})

		assert.ErrorIs(t, repo.AppendHistory(ctx, "alice", entry), model.ErrStorage)
	})
}
