package config

import (
	"flag"
	"os"
	"time"

	"github.com/ksorokina/fitvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN
//	-k string   application secret (hashing + field encryption)
//	-s string   JWT signing key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//
// Args are pre-filtered with flagx.FilterArgs so subcommand arguments
// and flags owned by other components do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-s", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AppSecret, "k", config.AppSecret, "application secret")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT signing key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
}
