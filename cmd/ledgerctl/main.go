// Command ledgerctl reads and edits the ledger from the shell, using the
// same backend configuration as the server.
package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"gagyebu/internal/cli"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

var commands struct {
	Add   addCmd   `cmd:"" help:"Record a transaction."`
	List  listCmd  `cmd:"" help:"Show the transactions of one date."`
	Rm    rmCmd    `cmd:"" help:"Remove a transaction by id."`
	Stats statsCmd `cmd:"" help:"Show monthly totals and the category breakdown."`
	Dates datesCmd `cmd:"" help:"List every date that has a bucket."`
}

func main() {
	kctx := kong.Parse(&commands,
		kong.Name("ledgerctl"),
		kong.Description("Command line access to the gagyebu ledger."))

	cli.LoadEnvFile()
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level).WithComponent(applog.ComponentCLI)
	cfg := cli.LoadSharedConfig(logger)

	ctx := context.Background()
	store, err := cli.OpenStore(ctx, logger, cfg)
	kctx.FatalIfErrorf(err)
	defer store.Close()

	var publisher services.Publisher
	if client, err := cli.OpenAMQP(ctx, logger, cfg); err != nil {
		logger.Warn("AMQP unavailable, changes will not be mirrored", "error", err)
	} else if client != nil {
		publisher = client
	}

	repo := ledger.NewRepository(store.Store)
	a := newApp(ctx, repo, publisher, cfg.StatsConcurrency, logger, os.Stdout)
	defer a.ledger.Close()

	kctx.FatalIfErrorf(kctx.Run(a))
}
