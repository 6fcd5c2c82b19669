package password

import (
	"encoding/base64"
	"testing"
)

func newTestHasher() *Hasher {
	return NewHasher("test-app-secret")
}

func mustSalt(t *testing.T) Salt {
	t.Helper()
	s, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt error: %v", err)
	}
	return s
}

func TestNewSalt_SizeAndEncoding(t *testing.T) {
	s := mustSalt(t)
	if len(s) != SaltSize {
		t.Fatalf("salt length = %d, want %d", len(s), SaltSize)
	}
	decoded, err := base64.URLEncoding.DecodeString(s.String())
	if err != nil {
		t.Fatalf("salt encoding is not URL-safe base64: %v", err)
	}
	if len(decoded) != SaltSize {
		t.Fatalf("decoded salt length = %d, want %d", len(decoded), SaltSize)
	}
}

func TestNewSalt_NoRepeats(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		s := mustSalt(t)
		key := s.String()
		if _, ok := seen[key]; ok {
			t.Fatalf("duplicate salt after %d draws", i)
		}
		seen[key] = struct{}{}
	}
}

func TestParseSalt_RoundTrip(t *testing.T) {
	s := mustSalt(t)
	got, err := ParseSalt(s.String())
	if err != nil {
		t.Fatalf("ParseSalt error: %v", err)
	}
	if got.String() != s.String() {
		t.Fatalf("round-trip mismatch: %q vs %q", got, s)
	}
}

func TestParseSalt_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not base64", "@@@not-base64@@@"},
		{"wrong length", base64.URLEncoding.EncodeToString([]byte("short"))},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSalt(tc.in); err == nil {
				t.Fatalf("ParseSalt(%q) succeeded, want error", tc.in)
			}
		})
	}
}

func TestHash_DeterministicAndStorageSafe(t *testing.T) {
	h := newTestHasher()
	salt := mustSalt(t)

	a := h.Hash("correct horse", salt)
	b := h.Hash("correct horse", salt)
	if a != b {
		t.Fatalf("same password and salt hashed differently: %q vs %q", a, b)
	}
	if _, err := base64.URLEncoding.DecodeString(a); err != nil {
		t.Fatalf("hash is not URL-safe base64: %v", err)
	}
}

func TestHash_DifferentSaltsDiffer(t *testing.T) {
	h := newTestHasher()
	s1 := mustSalt(t)
	s2 := mustSalt(t)

	if h.Hash("secret1", s1) == h.Hash("secret1", s2) {
		t.Fatal("same password under two salts produced identical hashes")
	}
}

func TestHash_DifferentSecretsDiffer(t *testing.T) {
	salt := mustSalt(t)
	if NewHasher("one").Hash("pw", salt) == NewHasher("two").Hash("pw", salt) {
		t.Fatal("same password under two app secrets produced identical hashes")
	}
}

func TestVerify(t *testing.T) {
	h := newTestHasher()
	salt := mustSalt(t)
	stored := h.Hash("secret1", salt)

	if !h.Verify("secret1", salt, stored) {
		t.Fatal("Verify rejected the correct password")
	}
	if h.Verify("wrong", salt, stored) {
		t.Fatal("Verify accepted a wrong password")
	}
	if h.Verify("secret1", salt, stored+"x") {
		t.Fatal("Verify accepted a tampered stored hash")
	}
	if h.Verify("secret1", salt, "") {
		t.Fatal("Verify accepted an empty stored hash")
	}
}

func TestVerify_UnicodePassword(t *testing.T) {
	h := newTestHasher()
	salt := mustSalt(t)
	pw := "пароль-密码-🔑"
	if !h.Verify(pw, salt, h.Hash(pw, salt)) {
		t.Fatal("Verify rejected a unicode password")
	}
}
