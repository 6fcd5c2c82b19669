package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ksorokina/fitvault/internal/common"
	"github.com/ksorokina/fitvault/internal/dbx"
	"github.com/ksorokina/fitvault/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, login, password, password_hash, salt, first_name, last_name, email, security_version, created_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Login, &a.Password, &a.PasswordHash, &a.Salt,
		&a.FirstName, &a.LastName, &a.Email, &a.SecurityVersion, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, login, password, password_hash, salt, first_name, last_name, email, security_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Login, account.Password, account.PasswordHash, account.Salt,
		account.FirstName, account.LastName, account.Email, account.SecurityVersion,
	).Scan(&account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetByLoginForUpdate(ctx context.Context, login string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login = $1 FOR UPDATE`
	return scanAccount(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET password = $2, password_hash = $3, salt = $4,
		    first_name = $5, last_name = $6, email = $7, security_version = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Password, account.PasswordHash, account.Salt,
		account.FirstName, account.LastName, account.Email, account.SecurityVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
