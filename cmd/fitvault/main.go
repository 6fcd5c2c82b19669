package main

import (
	"context"
	"os"
	"strings"

	"github.com/ksorokina/fitvault/internal/admincli"
	"github.com/ksorokina/fitvault/internal/logging"
	"github.com/ksorokina/fitvault/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stdout)

	// The subcommand precedes the flags; config parsing filters out
	// everything it does not own.
	var args []string
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		args = os.Args[1:2]
	}

	app := admincli.NewApp(cfg, logger, os.Stdin, os.Stdout)
	if err := app.Run(ctx, args); err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}
}
