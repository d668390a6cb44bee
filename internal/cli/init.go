// Package cli provides common CLI initialization utilities.
// It consolidates the startup sequence of cmd/ledger: env file, configuration,
// logger and the ledger itself.
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"ledger/internal/config"
	"ledger/internal/impexp"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

// SetupLogger builds the logger described by cfg and sets it as the default logger.
func SetupLogger(cfg *config.Config, out io.Writer) *applog.Logger {
	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: applog.ComponentCLI,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the given .env files, or ./.env when none is named.
// Missing files are ignored as they are optional outside local development.
func LoadEnvFile(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
// A non-empty dbPath overrides LEDGER_DB_PATH.
func LoadAndValidateConfig(dbPath string) (*config.Config, error) {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenLedger opens the ledger file named by cfg.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*services.Ledger, error) {
	l := services.NewLedger(impexp.NewImporter(cfg.ImportCacheSize), logger)
	if err := l.Open(ctx, cfg.DBPath); err != nil {
		return nil, err
	}
	return l, nil
}
