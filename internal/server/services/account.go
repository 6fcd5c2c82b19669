// Package services contains the backend business logic. This file
// implements AccountService: registration, sign-in with lazy credential
// upgrade, token issuance, and profile access over encrypted fields.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksorokina/fitvault/internal/common"
	"github.com/ksorokina/fitvault/internal/dbx"
	"github.com/ksorokina/fitvault/internal/logging"
	"github.com/ksorokina/fitvault/internal/secure/fieldcipher"
	"github.com/ksorokina/fitvault/internal/secure/password"
	"github.com/ksorokina/fitvault/internal/server/auth"
	"github.com/ksorokina/fitvault/internal/server/config"
	"github.com/ksorokina/fitvault/internal/server/models"
	"github.com/ksorokina/fitvault/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token, both minted on a successful sign-in.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Profile carries the decrypted personally identifiable fields of an
// account.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// credentialState classifies how an account record protects its
// credential: legacy records hold the plaintext password and profile,
// protected records hold a salted multi-round hash and ciphertext.
type credentialState int

const (
	stateLegacy credentialState = iota
	stateProtected
)

// AccountService provides credential-related operations:
//   - Register: create accounts in the protected format
//   - SignIn: verify credentials, upgrading legacy records in place
//   - RefreshToken: rotate refresh tokens
//   - Profile / UpdateProfile: read and write encrypted profile fields
type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	hasher                       *password.Hasher
	cipher                       *fieldcipher.Cipher
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	logger                       logging.Logger
}

// NewAccountService constructs an AccountService from repositories and
// server config. The application secret from cfg seeds both the
// password hasher and the field cipher.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		hasher:                       password.NewHasher(cfg.AppSecret),
		cipher:                       fieldcipher.New(cfg.AppSecret),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		logger:                       l.With("module", "accounts"),
	}
}

// Register creates a new account directly in the protected format:
// fresh salt, multi-round hash, encrypted profile fields. The plaintext
// password is never persisted.
func (s *AccountService) Register(ctx context.Context, login, pw string, profile Profile) (*models.Account, error) {
	salt, err := password.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	account := &models.Account{
		ID:              uuid.NewString(),
		Login:           login,
		PasswordHash:    s.hasher.Hash(pw, salt),
		Salt:            salt.String(),
		FirstName:       s.cipher.EncryptIfNeeded(profile.FirstName),
		LastName:        s.cipher.EncryptIfNeeded(profile.LastName),
		Email:           s.cipher.EncryptIfNeeded(profile.Email),
		SecurityVersion: models.SecurityVersionProtected,
	}

	repo := s.repomanager.Accounts(s.db)
	account, err = repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return account, nil
}

// SignIn authenticates login/pw and returns a fresh TokenPair.
//
// The record's state is decided once, from its security version with a
// structural fallback for records written before the version column was
// populated. A legacy record that authenticates is upgraded in place
// before tokens are issued. Every rejection, on either path, surfaces
// as the same common.ErrorUnauthorized so callers cannot tell which
// format the account is stored in.
func (s *AccountService) SignIn(ctx context.Context, login, pw string) (*TokenPair, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "loading account failed", "error", err)
		return nil, common.ErrorInternal
	}

	switch s.credentialState(account) {
	case stateProtected:
		salt, err := password.ParseSalt(account.Salt)
		if err != nil {
			s.logger.Error(ctx, "stored salt is malformed", "login", login, "error", err)
			return nil, common.ErrorInternal
		}
		if !s.hasher.Verify(pw, salt, account.PasswordHash) {
			return nil, common.ErrorUnauthorized
		}

	case stateLegacy:
		if account.Password != pw {
			return nil, common.ErrorUnauthorized
		}
		if err := s.upgradeCredentials(ctx, login, pw); err != nil {
			s.logger.Error(ctx, "credential upgrade failed", "login", login, "error", err)
			return nil, common.ErrorInternal
		}
	}

	return s.generateTokenPair(ctx, account.ID, s.db)
}

// credentialState inspects the stored record once, instead of
// re-deriving the format ad hoc at every call site. The structural
// fallback treats a record as protected when it carries both a salt and
// a hash and its email field already looks encrypted.
func (s *AccountService) credentialState(account *models.Account) credentialState {
	if account.SecurityVersion >= models.SecurityVersionProtected {
		return stateProtected
	}
	if account.Salt != "" && account.PasswordHash != "" && s.cipher.IsEncrypted(account.Email) {
		return stateProtected
	}
	return stateLegacy
}

// upgradeCredentials rewrites a legacy record in the protected format:
// fresh salt, multi-round hash, encrypted profile fields, version bump,
// plaintext password cleared. It runs as a single read-modify-write
// transaction with the row locked; a concurrent sign-in that already
// upgraded the record is detected on the re-read and the second upgrade
// is skipped. The transition never runs in bulk and never reverses.
func (s *AccountService) upgradeCredentials(ctx context.Context, login, pw string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := repo.GetByLoginForUpdate(ctx, login)
		if err != nil {
			return fmt.Errorf("re-reading account: %w", err)
		}
		if s.credentialState(account) == stateProtected {
			return nil
		}

		salt, err := password.NewSalt()
		if err != nil {
			return fmt.Errorf("generating salt: %w", err)
		}

		account.Salt = salt.String()
		account.PasswordHash = s.hasher.Hash(pw, salt)
		account.FirstName = s.cipher.EncryptIfNeeded(account.FirstName)
		account.LastName = s.cipher.EncryptIfNeeded(account.LastName)
		account.Email = s.cipher.EncryptIfNeeded(account.Email)
		account.Password = ""
		account.SecurityVersion = models.SecurityVersionProtected

		if err := repo.Update(ctx, account); err != nil {
			return fmt.Errorf("persisting upgraded account: %w", err)
		}

		s.logger.Info(ctx, "account upgraded to protected format", "login", login)
		return nil
	})
}

// RefreshToken validates a refresh token, rotates it transactionally,
// and returns a fresh TokenPair. Expired tokens yield
// common.ErrRefreshTokenExpired.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Profile returns the decrypted profile of the account the access token
// was minted for. Fields that cannot be decrypted (legacy plaintext, or
// ciphertext damaged in storage) pass through unchanged; real failures
// are logged and never abort the read.
func (s *AccountService) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	account, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &Profile{
		FirstName: s.decryptField(ctx, account.Login, "first_name", account.FirstName),
		LastName:  s.decryptField(ctx, account.Login, "last_name", account.LastName),
		Email:     s.decryptField(ctx, account.Login, "email", account.Email),
	}, nil
}

// UpdateProfile rewrites the profile fields of the token's account.
// Values are encrypted only if needed, so callers may pass freshly
// entered plaintext and previously stored ciphertext interchangeably.
func (s *AccountService) UpdateProfile(ctx context.Context, accessToken string, profile Profile) error {
	account, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return err
	}

	account.FirstName = s.cipher.EncryptIfNeeded(profile.FirstName)
	account.LastName = s.cipher.EncryptIfNeeded(profile.LastName)
	account.Email = s.cipher.EncryptIfNeeded(profile.Email)

	repo := s.repomanager.Accounts(s.db)
	if err := repo.Update(ctx, account); err != nil {
		s.logger.Error(ctx, "persisting profile failed", "login", account.Login, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// --- helpers below ---

func (s *AccountService) authenticate(ctx context.Context, accessToken string) (*models.Account, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return account, nil
}

func (s *AccountService) decryptField(ctx context.Context, login, field, value string) string {
	plain, err := s.cipher.Decrypt(value)
	if err != nil && !errors.Is(err, fieldcipher.ErrNotEncrypted) {
		s.logger.Warn(ctx, "field did not decrypt, returning stored value",
			"login", login, "field", field, "error", err)
	}
	return plain
}

func (s *AccountService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
