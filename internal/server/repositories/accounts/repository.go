// Package accounts declares the repository contract for the account
// store consumed by the credential services.
package accounts

import (
	"context"

	"github.com/ksorokina/fitvault/internal/server/models"
)

// Repository defines the account store operations. Implementations
// return common.ErrorNotFound when a record is absent.
type Repository interface {
	// Create inserts a new account and returns it with its ID set.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByLogin returns the account identified by login.
	GetByLogin(ctx context.Context, login string) (*models.Account, error)

	// GetByLoginForUpdate returns the account identified by login,
	// locking the row for the duration of the surrounding transaction.
	// Only meaningful on a transactional handle.
	GetByLoginForUpdate(ctx context.Context, login string) (*models.Account, error)

	// GetByID returns the account identified by id.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// Update rewrites the mutable columns of an existing account.
	Update(ctx context.Context, account *models.Account) error
}
