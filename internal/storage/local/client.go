// Package local stores uploaded artifacts on the local filesystem, one
// directory per user.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dtroode/heartcare-server/internal/model"
	"github.com/dtroode/heartcare-server/internal/storage"
)

var _ model.ArtifactStorage = (*Client)(nil)

type Client struct {
	dir string
	now func() time.Time
}

func NewClient(dir string) *Client {
	return &Client{
		dir: dir,
		now: time.Now,
	}
}

// Provision creates the upload directory for username.
func (c *Client) Provision(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := c.userDir(username)
	return err
}

func (c *Client) userDir(username string) (string, error) {
	if !storage.ValidNamespace(username) {
		return "", fmt.Errorf("%w: invalid namespace %q", model.ErrStorage, username)
	}

	dir := filepath.Join(c.dir, username)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: failed to create upload directory: %v", model.ErrStorage, err)
	}

	return dir, nil
}

// Store copies r into a freshly named file under the user's directory. The
// file is always closed, and removed again if the copy fails.
func (c *Client) Store(ctx context.Context, username string, r io.Reader, originalName string) (filename, path string, err error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	dir, err := c.userDir(username)
	if err != nil {
		return "", "", err
	}

	name := storage.NewArtifactName(c.now(), originalName)
	target := filepath.Join(dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", "", fmt.Errorf("%w: failed to create artifact: %v", model.ErrStorage, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close artifact: %v", model.ErrStorage, cerr)
		}
		if err != nil {
			_ = os.Remove(target)
			filename, path = "", ""
		}
	}()

	if _, err = io.Copy(f, contextReader{ctx: ctx, r: r}); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", "", err
		}
		return "", "", fmt.Errorf("%w: failed to write artifact: %v", model.ErrStorage, err)
	}

	return name, target, nil
}

func (c *Client) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open artifact: %v", model.ErrStorage, err)
	}

	return f, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
