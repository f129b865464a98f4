package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/config"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/engine"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/logging"
)

var (
	verbose    bool
	quiet      bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sotd-match",
	Short: "sotd-match - shaving product matcher",
	Long: `sotd-match resolves free-text razor, blade, brush and soap strings
to canonical products using YAML catalogs, a curated correct-matches file
and a filtered-entries list.

Catalogs are embedded; point --config or SOTD_CATALOG_DIR at a directory
to use your own.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $"+config.EnvPath+")")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies --verbose and --quiet.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	switch {
	case quiet:
		cfg.Log.Level = "error"
	case verbose:
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newEngine loads config, sets up logging and builds the matching engine.
func newEngine() (*engine.Engine, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log)
	e, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return e, logger, nil
}
