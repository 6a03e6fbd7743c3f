package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bluem/internal/bluem"
	"github.com/srg/bluem/internal/busd"
	"github.com/srg/bluem/internal/groutine"
	"github.com/srg/bluem/internal/notify"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mock stack on the bus",
	Long: `Registers the adapter, the admin object and the object manager, claims the
configured bus name and serves until interrupted.

Examples:
  # Serve on the session bus as org.bluem
  bluem serve

  # Serve on the system bus with debug logging
  bluem serve --bus system --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg, false)
	if err != nil {
		return err
	}
	opts, err := cfg.StackOptions()
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stack, err := bluem.New(opts, logger)
	if err != nil {
		return err
	}

	stream := stack.Broadcaster().Watch(cfg.EventBuffer)
	logged := logEvents(ctx, stream, logger)
	defer func() {
		stream.Close()
		<-logged
	}()

	if err := stack.Start(ctx); err != nil {
		return err
	}
	defer stack.Stop()

	return busd.NewServer(stack, cfg.Bus, cfg.BusName, logger).Serve(ctx)
}

// logEvents logs every event read from stream until it is closed
func logEvents(ctx context.Context, stream *notify.Stream, logger *logrus.Logger) <-chan struct{} {
	return groutine.Go(ctx, "event-log", func(context.Context) {
		for ev := range stream.C() {
			entry := logger.WithFields(logrus.Fields{
				"seq":  ev.Seq,
				"kind": ev.Kind,
				"path": ev.Path,
			})
			if ev.Interface != "" {
				entry = entry.WithField("interface", ev.Interface)
			}
			entry.Info(ev.String())
		}
		if dropped := stream.Dropped(); dropped > 0 {
			logger.WithField("dropped", dropped).Warn("Event log fell behind")
		}
	})
}
