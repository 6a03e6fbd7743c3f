package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/srg/bluem/internal/busd"
	"github.com/srg/bluem/pkg/config"
)

// dialMock loads configuration and connects a client to the running mock.
// The caller must call the returned close function.
func dialMock(cmd *cobra.Command) (*busd.Client, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := configureLogger(cmd, cfg, true)
	if err != nil {
		return nil, nil, nil, err
	}

	conn, err := busd.Connect(cfg.Bus)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.WithField("bus", cfg.Bus).Debug("Connected to bus")

	return busd.NewClient(conn, cfg.BusName), cfg, func() { _ = conn.Close() }, nil
}

// callContext bounds a single client call by the configured timeout
func callContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, cfg.CallTimeout)
}

