package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/ksorokina/fitvault/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("signing-key")

	token, err := GenerateToken("user-1", secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, err := GetUserIDFromToken(token, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("userID = %q, want user-1", userID)
	}
}

func TestGetUserIDFromToken_WrongKey(t *testing.T) {
	token, err := GenerateToken("user-1", []byte("key-a"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := GetUserIDFromToken(token, []byte("key-b")); err == nil {
		t.Fatal("expected error for wrong signing key")
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("signing-key")
	token, err := GenerateToken("user-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := GetUserIDFromToken(token, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want common.ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	if _, err := GetUserIDFromToken("not-a-token", []byte("k")); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
