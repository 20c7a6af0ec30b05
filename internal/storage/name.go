// Package storage holds helpers shared by the artifact storage backends.
package storage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultExt is used when the uploaded name carries no extension.
const DefaultExt = ".png"

// NewArtifactName returns ECG_<YYYYMMDD_HHMMSS>_<8 hex><ext>. The random
// suffix keeps names unique for uploads within the same second.
func NewArtifactName(now time.Time, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || ext == "." {
		ext = DefaultExt
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return "ECG_" + now.Format("20060102_150405") + "_" + suffix + ext
}

// ValidNamespace reports whether username is safe to use as a directory or
// key prefix.
func ValidNamespace(username string) bool {
	if username == "" || username == "." || username == ".." {
		return false
	}
	return !strings.ContainsAny(username, `/\`)
}
