// Package fieldcipher encrypts short personally identifiable strings
// (names, provider identifiers) for at-rest storage.
//
// The scheme is a key-derived XOR stream: the application secret is
// digested once into a 32-byte key, and each plaintext byte is XORed
// against the key repeated cyclically. Ciphertext is stored as
// "ENC:" + base64, so encrypted values are self-describing and can
// coexist with legacy plaintext in the same column.
package fieldcipher

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ksorokina/fitvault/internal/secure/digest"
)

// Marker prefixes every encrypted value. A plaintext that happens to
// start with the marker is indistinguishable from ciphertext; see
// IsEncrypted.
const Marker = "ENC:"

// ErrNotEncrypted reports that Decrypt received a value without the
// ciphertext marker, i.e. a legacy plaintext passed through unchanged.
var ErrNotEncrypted = errors.New("value is not encrypted")

// Cipher encrypts and decrypts field values. It holds only the derived
// key and is safe for concurrent use. One key serves every field of
// every account; rotating the application secret invalidates all
// previously encrypted values.
type Cipher struct {
	key [digest.Size]byte
}

// New derives the field key from the application secret.
func New(secret string) *Cipher {
	return &Cipher{key: digest.Sum256([]byte(secret))}
}

// xorKeystream XORs b against the derived key repeated cyclically.
// XOR is self-inverse, so encryption and decryption share this loop.
func (c *Cipher) xorKeystream(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ c.key[i%len(c.key)]
	}
	return out
}

// Encrypt returns the marked, base64-encoded ciphertext of plaintext.
// The empty string has nothing to protect and passes through unchanged.
func (c *Cipher) Encrypt(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	return Marker + base64.StdEncoding.EncodeToString(c.xorKeystream([]byte(plaintext)))
}

// Decrypt reverses Encrypt. It never fails into the caller: whenever
// the value cannot be decrypted, the original input is returned
// unchanged together with a non-nil error saying why, so callers can
// distinguish "was plaintext" from "failed to decrypt" while still
// treating either as a passthrough.
func (c *Cipher) Decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if !c.IsEncrypted(value) {
		return value, ErrNotEncrypted
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Marker))
	if err != nil {
		return value, fmt.Errorf("decoding ciphertext: %w", err)
	}
	plain := c.xorKeystream(raw)
	if !utf8.Valid(plain) {
		return value, errors.New("decrypted bytes are not valid UTF-8")
	}
	return string(plain), nil
}

// IsEncrypted reports whether value carries the ciphertext marker.
// This is a pure prefix check: a plaintext beginning with "ENC:" is
// misclassified as encrypted. Accepted trade-off of the self-describing
// format.
func (c *Cipher) IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Marker)
}

// EncryptIfNeeded encrypts value unless it is empty or already carries
// the marker. Repeated application is idempotent, so update paths may
// pass freshly entered plaintext and stored ciphertext interchangeably.
func (c *Cipher) EncryptIfNeeded(value string) string {
	if value == "" || c.IsEncrypted(value) {
		return value
	}
	return c.Encrypt(value)
}
