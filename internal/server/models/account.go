// Package models holds the persistence-level records shared by
// repositories and services.
package models

import "time"

// Security versions of an account record. Legacy records predate the
// protection engine and store the password and profile fields in the
// clear; protected records store a salted multi-round hash and
// encrypted profile fields. An account never moves back to legacy.
const (
	SecurityVersionLegacy    = 1
	SecurityVersionProtected = 2
)

// Account is a user record as persisted by the account store.
//
// Password holds the legacy plaintext password and is cleared the
// moment the record is upgraded; PasswordHash and Salt are empty on
// legacy records. FirstName, LastName and Email carry "ENC:"-prefixed
// ciphertext once protected.
type Account struct {
	ID              string
	Login           string
	Password        string
	PasswordHash    string
	Salt            string
	FirstName       string
	LastName        string
	Email           string
	SecurityVersion int
	CreatedAt       time.Time
}
