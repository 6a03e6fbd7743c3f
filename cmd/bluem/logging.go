package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bluem/pkg/config"
)

// loadConfig reads --config and applies the --bus and --log-level overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if bus, _ := cmd.Flags().GetString("bus"); bus != "" {
		cfg.Bus = bus
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// configureLogger creates a logger at the configured level.
// Client commands stay quiet unless --log-level is given explicitly.
func configureLogger(cmd *cobra.Command, cfg *config.Config, quiet bool) (*logrus.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if explicit, _ := cmd.Flags().GetString("log-level"); quiet && explicit == "" {
		level = logrus.WarnLevel
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger, nil
}
