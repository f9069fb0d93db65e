// Package daemon holds the server process configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration, loaded from a TOML file with
// defaults applied first so partial files are fine.
type Config struct {
	API       APIConfig       `toml:"api"`
	Database  DatabaseConfig  `toml:"database"`
	Ledger    LedgerConfig    `toml:"ledger"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port the API binds to.
func (c APIConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// DatabaseConfig configures snapshot persistence.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LedgerConfig bounds per-account transaction history kept in memory and
// returned by the history endpoint. 0 keeps everything.
type LedgerConfig struct {
	HistoryLimit int `toml:"history_limit"`
}

// SchedulerConfig configures the auto-collect sweeper. Spec is a cron
// expression with a seconds field.
type SchedulerConfig struct {
	Enabled bool   `toml:"enabled"`
	Spec    string `toml:"spec"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8087,
		},
		Database: DatabaseConfig{
			Path: defaultDBPath(),
		},
		Ledger: LedgerConfig{
			HistoryLimit: 1000,
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
			Spec:    "0 * * * * *", // every minute, on the minute
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "drip.db"
	}
	return filepath.Join(home, ".drip", "drip.db")
}

// Load reads the config file at path over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
