// Package repomanager vends repository implementations bound to a DB
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/ksorokina/fitvault/internal/dbx"
	"github.com/ksorokina/fitvault/internal/server/repositories/accounts"
	"github.com/ksorokina/fitvault/internal/server/repositories/refreshtokens"
)

// RepositoryManager hands out repositories bound to either a *sql.DB or
// a transactional handle, so services can run multi-step writes
// atomically via dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
