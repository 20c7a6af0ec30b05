// Package jsonfile keeps user accounts in a single JSON document on disk.
//
// Every operation reads the whole document, mutates it in memory and writes
// it back. A mutex serialises these cycles within the process, and writes go
// through a temp file renamed over the original so a reader never observes a
// half-written document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dtroode/heartcare-server/internal/logger"
	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/password"
)

var _ model.UserStore = (*UserRepository)(nil)

// rename is a test seam for os.Rename.
var rename = os.Rename

type UserRepository struct {
	path    string
	storage model.ArtifactStorage
	logger  *logger.Logger
	now     func() time.Time

	mu sync.Mutex
}

func NewUserRepository(path string, storage model.ArtifactStorage, logger *logger.Logger) *UserRepository {
	return &UserRepository{
		path:    path,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// EnsureInitialized creates an empty users document if none exists.
func (r *UserRepository) EnsureInitialized(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ensure()
}

func (r *UserRepository) CreateUser(ctx context.Context, username, pwd, fullName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	salt, err := password.NewSalt()
	if err != nil {
		return err
	}

	err = r.update(func(db *model.Database) error {
		if _, ok := db.Users[username]; ok {
			return model.ErrAlreadyExists
		}

		db.Users[username] = model.UserRecord{
			FullName:     fullName,
			Salt:         salt,
			PasswordHash: password.Hash(salt, pwd),
			CreatedAt:    r.now(),
			History:      []model.HistoryEntry{},
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("User store: user created", "username", username)

	// Store provisions lazily as well, so a failure here does not undo the account.
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

// AppendHistory prepends entry to the user's history, keeping at most
// model.HistoryLimit entries. Unknown users are ignored.
func (r *UserRepository) AppendHistory(ctx context.Context, username string, entry model.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unknown := false
	err := r.update(func(db *model.Database) error {
		user, ok := db.Users[username]
		if !ok {
			unknown = true
			return errSkipWrite
		}

		user.History = model.PrependHistory(user.History, entry)
		db.Users[username] = user
		return nil
	})
	if err != nil {
		return err
	}

	if unknown {
		r.logger.Warn("User store: history append for unknown user ignored", "username", username)
	}

	return nil
}

func (r *UserRepository) GetUser(ctx context.Context, username string) (model.UserRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.UserRecord{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.load()
	if err != nil {
		return model.UserRecord{}, false, err
	}

	user, ok := db.Users[username]
	return user, ok, nil
}

// errSkipWrite aborts an update without writing and without failing.
var errSkipWrite = errors.New("skip write")

// update runs one locked read-modify-write cycle. Nothing is written when fn
// returns an error.
func (r *UserRepository) update(fn func(db *model.Database) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.load()
	if err != nil {
		return err
	}

	if err := fn(&db); err != nil {
		if errors.Is(err, errSkipWrite) {
			return nil
		}
		return err
	}

	return r.save(db)
}

func (r *UserRepository) ensure() error {
	_, err := os.Stat(r.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to stat users file: %v", model.ErrStorage, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("%w: failed to create users directory: %v", model.ErrStorage, err)
	}

	r.logger.Info("User store: creating empty users file", "path", r.path)

	return r.save(model.NewDatabase())
}

func (r *UserRepository) load() (model.Database, error) {
	if err := r.ensure(); err != nil {
		return model.Database{}, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return model.Database{}, fmt.Errorf("%w: failed to read users file: %v", model.ErrStorage, err)
	}

	var db model.Database
	if err := json.Unmarshal(data, &db); err != nil {
		return model.Database{}, fmt.Errorf("%w: failed to decode users file: %v", model.ErrStorage, err)
	}
	if db.Users == nil {
		db.Users = map[string]model.UserRecord{}
	}

	return db, nil
}

func (r *UserRepository) save(db model.Database) (err error) {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode users file: %v", model.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", model.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to write users file: %v", model.ErrStorage, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to sync users file: %v", model.ErrStorage, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close users file: %v", model.ErrStorage, err)
	}

	if err = rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: failed to replace users file: %v", model.ErrStorage, err)
	}

	return nil
}
