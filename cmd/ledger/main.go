package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"ledger/internal/cli"
	"ledger/internal/commands"
	"ledger/internal/services"
)

var dbPath = flag.String("db", "", "Path to the ledger database file (overrides LEDGER_DB_PATH)")

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commands.Register(commander)

	flag.Parse()

	cfg, err := cli.LoadAndValidateConfig(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	logger := cli.SetupLogger(cfg, os.Stderr)

	env := commands.NewEnv(func(ctx context.Context) (*services.Ledger, error) {
		return cli.OpenLedger(ctx, cfg, logger)
	})

	status := commander.Execute(context.Background(), env)
	if err := env.Close(); err != nil {
		logger.Error("Failed to close ledger", "error", err)
	}
	os.Exit(int(status))
}
