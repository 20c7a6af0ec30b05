// Package password implements the salted digest used for stored credentials.
//
// The digest is SHA-256 over salt+password rendered as lowercase hex, which
// keeps users files written by earlier releases verifiable. It is a demo
// scheme and not a password KDF.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// SaltSize is the number of random bytes behind a salt.
const SaltSize = 16

// NewSalt returns SaltSize random bytes hex-encoded.
func NewSalt() (string, error) {
	buf := make([]byte, SaltSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the hex SHA-256 digest of salt+password.
func Hash(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password hashes to expected under salt.
func Verify(salt, password, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(salt, password)), []byte(expected)) == 1
}
