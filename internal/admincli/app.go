// Package admincli implements the fitvault operator CLI: schema
// migrations, account registration, sign-in checks, and ad-hoc hash
// derivation for support work.
package admincli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/ksorokina/fitvault/internal/common"
	"github.com/ksorokina/fitvault/internal/logging"
	"github.com/ksorokina/fitvault/internal/secure/password"
	"github.com/ksorokina/fitvault/internal/server/config"
	"github.com/ksorokina/fitvault/internal/server/repositories/repomanager"
	"github.com/ksorokina/fitvault/internal/server/services"
)

const usage = `usage: fitvault <command> [flags]

commands:
  migrate    apply schema migrations
  register   create a protected account
  signin     authenticate and print a token pair
  profile    show the decrypted profile for an access token
  hash       derive a salt and password hash without touching storage
`

// App wires configuration, prompts, and the account service behind the
// CLI commands.
type App struct {
	cfg    *config.Config
	logger logging.Logger
	in     *bufio.Reader
	out    io.Writer
}

// NewApp constructs the CLI around the given config and streams.
func NewApp(cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With("module", "admincli"),
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run dispatches the subcommand named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("no command given")
	}

	switch args[0] {
	case "migrate":
		return a.runMigrate(ctx)
	case "register":
		return a.runRegister(ctx)
	case "signin":
		return a.runSignIn(ctx)
	case "profile":
		return a.runProfile(ctx)
	case "hash":
		return a.runHash()
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// withService opens the database and hands a ready AccountService to fn.
func (a *App) withService(ctx context.Context, fn func(svc *services.AccountService) error) error {
	db, err := sql.Open("pgx", a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	return fn(services.NewAccountService(db, rm, a.cfg, a.logger))
}

func (a *App) runMigrate(ctx context.Context) error {
	db, err := sql.Open("pgx", a.cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	fmt.Fprintln(a.out, "migrations applied")
	return nil
}

func (a *App) runRegister(ctx context.Context) error {
	login, err := GetSimpleText(a.in, "Login", a.out)
	if err != nil {
		return err
	}
	firstName, err := GetSimpleText(a.in, "First name", a.out)
	if err != nil {
		return err
	}
	lastName, err := GetSimpleText(a.in, "Last name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	return a.withService(ctx, func(svc *services.AccountService) error {
		account, err := svc.Register(ctx, login, string(pw), services.Profile{
			FirstName: firstName, LastName: lastName, Email: email,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "registered account %s\n", account.ID)
		return nil
	})
}

func (a *App) runSignIn(ctx context.Context) error {
	login, err := GetSimpleText(a.in, "Login", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	return a.withService(ctx, func(svc *services.AccountService) error {
		pair, err := svc.SignIn(ctx, login, string(pw))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "access token: %s\nrefresh token: %s\n", pair.AccessToken, pair.RefreshToken)
		return nil
	})
}

func (a *App) runProfile(ctx context.Context) error {
	token, err := GetSimpleText(a.in, "Access token", a.out)
	if err != nil {
		return err
	}

	return a.withService(ctx, func(svc *services.AccountService) error {
		profile, err := svc.Profile(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "first name: %s\nlast name: %s\nemail: %s\n",
			profile.FirstName, profile.LastName, profile.Email)
		return nil
	})
}

// runHash derives a fresh salt and the stored-form hash for a password.
// Useful for seeding fixtures and verifying support cases; nothing is
// persisted.
func (a *App) runHash() error {
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	salt, err := password.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	hasher := password.NewHasher(a.cfg.AppSecret)
	fmt.Fprintf(a.out, "salt: %s\nhash: %s\n", salt, hasher.Hash(string(pw), salt))
	return nil
}
