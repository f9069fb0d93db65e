// Package cli implements the drip command line interface.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "drip",
	Short: "drip — idle economy engine",
	Long: `drip runs a tick-free idle economy: income sources accrue against
per-source cooldowns, collections credit an append-only ledger, and paid
tiers multiply yields, add source slots, shorten cooldowns, and unlock
background auto-collection.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(),
		"Path to the TOML config file")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "drip.toml"
	}
	return filepath.Join(home, ".drip", "config.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
