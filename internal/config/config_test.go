package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				DBPath:          filepath.Join(tmpDir, "ledger.db"),
				LogLevel:        "info",
				LogFormat:       "text",
				ImportCacheSize: 256,
			},
			wantErr: false,
		},
		{
			name: "in-memory database",
			config: Config{
				DBPath:          ":memory:",
				LogLevel:        "debug",
				LogFormat:       "json",
				ImportCacheSize: 1,
			},
			wantErr: false,
		},
		{
			name: "creates missing database directory",
			config: Config{
				DBPath:          filepath.Join(tmpDir, "nested", "dir", "ledger.db"),
				LogLevel:        "warn",
				LogFormat:       "text",
				ImportCacheSize: 10,
			},
			wantErr: false,
		},
		{
			name: "empty database path",
			config: Config{
				DBPath:          "  ",
				LogLevel:        "info",
				LogFormat:       "text",
				ImportCacheSize: 256,
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "invalid log level",
			config: Config{
				DBPath:          "./ledger.db",
				LogLevel:        "verbose",
				LogFormat:       "text",
				ImportCacheSize: 256,
			},
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name: "invalid log format",
			config: Config{
				DBPath:          "./ledger.db",
				LogLevel:        "info",
				LogFormat:       "xml",
				ImportCacheSize: 256,
			},
			wantErr:     true,
			errorString: "invalid log format 'xml': must be one of [text json]",
		},
		{
			name: "import cache size too small",
			config: Config{
				DBPath:          "./ledger.db",
				LogLevel:        "info",
				LogFormat:       "text",
				ImportCacheSize: 0,
			},
			wantErr:     true,
			errorString: "invalid import cache size 0: must be at least 1",
		},
		{
			name: "import cache size too large",
			config: Config{
				DBPath:          "./ledger.db",
				LogLevel:        "info",
				LogFormat:       "text",
				ImportCacheSize: 200000,
			},
			wantErr:     true,
			errorString: "invalid import cache size 200000: must be at most 100000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{DBPath: "", LogLevel: "loud", LogFormat: "yaml", ImportCacheSize: -1}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Config.Validate() error = nil, want combined error")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 4 {
		t.Errorf("Config.Validate() reported %d problems, want 4: %v", got, err)
	}
}

func TestLoad(t *testing.T) {
	keys := []string{"LEDGER_DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "IMPORT_CACHE_SIZE"}

	// Save original env vars
	originalVars := map[string]string{}
	for _, key := range keys {
		originalVars[key] = os.Getenv(key)
		os.Unsetenv(key)
	}

	// Restore env vars at end of test
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.DBPath != "./data/ledger.db" {
			t.Errorf("Load() DBPath = %v, want ./data/ledger.db", cfg.DBPath)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Load() LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.LogFormat != "text" {
			t.Errorf("Load() LogFormat = %v, want text", cfg.LogFormat)
		}
		if cfg.ImportCacheSize != 256 {
			t.Errorf("Load() ImportCacheSize = %v, want 256", cfg.ImportCacheSize)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("LEDGER_DB_PATH", "/tmp/test-ledger.db")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("LOG_FORMAT", "json")
		os.Setenv("IMPORT_CACHE_SIZE", "32")

		cfg := Load()

		if cfg.DBPath != "/tmp/test-ledger.db" {
			t.Errorf("Load() DBPath = %v, want /tmp/test-ledger.db", cfg.DBPath)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Load() LogFormat = %v, want json", cfg.LogFormat)
		}
		if cfg.ImportCacheSize != 32 {
			t.Errorf("Load() ImportCacheSize = %v, want 32", cfg.ImportCacheSize)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("IMPORT_CACHE_SIZE", "invalid")

		cfg := Load()

		if cfg.ImportCacheSize != 256 {
			t.Errorf("Load() ImportCacheSize = %v, want 256 (default for invalid input)", cfg.ImportCacheSize)
		}
	})
}
