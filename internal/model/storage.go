package model

import (
	"context"
	"io"
)

// ArtifactStorage keeps uploaded images in a per-user namespace.
type ArtifactStorage interface {
	// Provision prepares the namespace for username.
	Provision(ctx context.Context, username string) error
	// Store writes the artifact and returns its generated filename and the
	// path it can be reopened with.
	Store(ctx context.Context, username string, r io.Reader, originalName string) (filename string, path string, err error)
	// Open reads back an artifact previously returned by Store.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Classifier turns image bytes into a verdict and a confidence in [0,100].
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Label, float64, error)
}
