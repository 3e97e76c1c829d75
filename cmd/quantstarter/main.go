// quantstarter - synthetic data, factor signals, backtests, and parameter
// sweeps from one binary.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quantstarter/internal/config"
	"quantstarter/internal/data"
	"quantstarter/internal/panel"
	"quantstarter/internal/store"
	"quantstarter/internal/util"
)

var (
	version = "0.1.0"
	cfgPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quantstarter",
		Short: "Quantitative research pipeline",
		Long: `quantstarter generates synthetic price data, computes factor signals,
runs vectorized backtests, and sweeps engine parameters.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(generateDataCmd())
	rootCmd.AddCommand(factorsCmd())
	rootCmd.AddCommand(backtestCmd())
	rootCmd.AddCommand(tuneCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quantstarter version %s\n", version)
		},
	}
}

// setup loads the configuration and installs the logger every command uses.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)
	return cfg, log, nil
}

// readPanel loads a panel from CSV or Parquet, chosen by file extension.
func readPanel(path string) (*panel.Panel, error) {
	if filepath.Ext(path) == ".parquet" {
		return store.ReadPanelFile(path)
	}
	return data.ReadPanelCSV(path)
}

// writePanel saves a panel as CSV or Parquet, chosen by file extension.
func writePanel(path string, p *panel.Panel) error {
	if filepath.Ext(path) == ".parquet" {
		return store.WritePanelFile(path, p)
	}
	return data.WritePanelCSV(path, p)
}
