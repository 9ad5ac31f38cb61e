package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
)

var (
	cfg    *config.Config
	logger *events.Logger

	cfgFile    string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "reposeed",
	Short: "Validate repository structure definitions and replay directory templates",
	Long: `reposeed parses and validates structure documents (JSON or YAML, flat v1
or nested v2 layout), migrates and exports them, and captures real
directories as named templates that can be synced onto new locations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Config file (default: reposeed.yaml in . or ~/.config/reposeed)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output machine-readable JSON")
}

func setup(cmd *cobra.Command, args []string) error {
	configureOutput()

	loader := config.NewLoader(cfgFile)
	loaded, err := loader.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	events.SetDefault(logger)

	if used := loader.ConfigFileUsed(); used != "" {
		logger.WithField("config", used).Debug("Loaded configuration")
	}

	cmd.SetContext(events.WithLogger(cmd.Context(), logger))
	return nil
}
