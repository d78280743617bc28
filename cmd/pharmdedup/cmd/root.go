// Package cmd implements the pharmdedup command tree.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pharmdedup",
	Short: "Cross-source pharmacy registry deduplication",
	Long: `Pharmdedup resolves duplicate pharmacy records across the registry's
data sources (regulators, partners, crowdsourced and map data).

It generates candidate pairs with state blocking and a geographic
pre-filter, scores each pair across name, location, phone, and regulator
identifier signals, and merges confident duplicates into survivor
records with full audit reports.`,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"merge rules file (default is ./merge_rules.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log warnings and errors")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	switch {
	case verbose:
		cfg.Level = "debug"
	case quiet:
		cfg.Level = "warn"
	}
	logging.Configure(cfg)
	return nil
}
