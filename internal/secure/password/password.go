// Package password derives and verifies stored password hashes.
//
// A credential is protected by a per-account random salt and a
// multi-round digest of "salt:password:secret", where the secret is an
// application-wide value injected at construction time. The iteration
// count is a deliberate cost factor against brute-force attempts.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/ksorokina/fitvault/internal/secure/digest"
)

const (
	// Rounds is how many times the digest is applied to its own output
	// when deriving a stored hash. Tunable cost factor; raising it slows
	// both legitimate sign-ins and offline guessing.
	Rounds = 10000

	// SaltSize is the length of a raw salt in bytes.
	SaltSize = 32
)

// Salt is a per-credential random value. It is generated once at
// registration or password reset and never reused across accounts.
type Salt []byte

// NewSalt returns a fresh salt read from the system's secure random
// source. A failure to read is returned as-is; there is no fallback to
// a weaker source, the calling operation must abort.
func NewSalt() (Salt, error) {
	b := make([]byte, SaltSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("reading secure random source: %w", err)
	}
	return Salt(b), nil
}

// ParseSalt decodes the stored URL-safe base64 form of a salt.
// A value that does not decode, or decodes to the wrong length, is a
// caller contract violation and fails immediately.
func ParseSalt(s string) (Salt, error) {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	if len(b) != SaltSize {
		return nil, fmt.Errorf("salt is %d bytes, expected %d", len(b), SaltSize)
	}
	return Salt(b), nil
}

// String returns the URL-safe base64 form used for storage.
func (s Salt) String() string {
	return base64.URLEncoding.EncodeToString(s)
}

// Hasher derives storage-safe password hashes. It holds no mutable
// state and is safe for concurrent use.
type Hasher struct {
	secret string
}

// NewHasher returns a Hasher bound to the application-wide secret.
func NewHasher(secret string) *Hasher {
	return &Hasher{secret: secret}
}

// Hash derives the stored hash for password under salt: the digest of
// "salt:password:secret", re-digested Rounds-1 more times, encoded as
// URL-safe base64. Identical inputs always produce identical output.
func (h *Hasher) Hash(password string, salt Salt) string {
	d := digest.Sum256([]byte(salt.String() + ":" + password + ":" + h.secret))
	for i := 1; i < Rounds; i++ {
		d = digest.Sum256(d[:])
	}
	return base64.URLEncoding.EncodeToString(d[:])
}

// Verify recomputes the hash for the candidate password and compares it
// against the stored one in constant time, so the comparison leaks
// nothing about where the first mismatching byte sits.
func (h *Hasher) Verify(password string, salt Salt, stored string) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}
