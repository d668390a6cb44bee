package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	applog "ledger/internal/log"
)

const (
	DefaultDBPath          = "./data/ledger.db"
	DefaultImportCacheSize = 256
	MaxImportCacheSize     = 100000
)

var validLogFormats = []string{"text", "json"}

type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Import
	ImportCacheSize int
}

func Load() *Config {
	return &Config{
		DBPath:          getEnv("LEDGER_DB_PATH", DefaultDBPath),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		ImportCacheSize: getEnvInt("IMPORT_CACHE_SIZE", DefaultImportCacheSize),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.DBPath) == "" {
		errors = append(errors, "database path cannot be empty")
	} else if c.DBPath != ":memory:" {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if c.ImportCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid import cache size %d: must be at least 1", c.ImportCacheSize))
	} else if c.ImportCacheSize > MaxImportCacheSize {
		errors = append(errors, fmt.Sprintf("invalid import cache size %d: must be at most %d", c.ImportCacheSize, MaxImportCacheSize))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
