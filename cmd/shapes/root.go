package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ruflab/simple-shapes-dataset/internal/config"
	"github.com/ruflab/simple-shapes-dataset/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shapes",
	Short: "Inspect, align and serve the Simple Shapes dataset",
	Long: `shapes loads the domains of one split of the Simple Shapes dataset,
partitions them into aligned groups and serves the records over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML or JSON configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides the config)")
	rootCmd.PersistentFlags().String("dataset", "", "dataset directory (overrides dataset_path)")
	rootCmd.PersistentFlags().String("split", "", "train, val or test (overrides split)")
}

// loadConfig reads the configuration, applies the flag overrides and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, nil, err
		}
	}

	if v, _ := cmd.Flags().GetString("dataset"); v != "" {
		cfg.DatasetPath = v
	}
	if v, _ := cmd.Flags().GetString("split"); v != "" {
		cfg.Split = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	return cfg, logging.New(level), nil
}
