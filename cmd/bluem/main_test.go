package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/srg/bluem/internal/busd"
	"github.com/srg/bluem/internal/notify"
	"github.com/srg/bluem/internal/objtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlagCommand returns a command carrying the global flags, parsed from args
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("bus", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "bus error value",
			err:  fmt.Errorf("connect failed: %w", dbus.Error{Name: busd.ErrNameUnknownObject, Body: []any{"no such object"}}),
			want: "UnknownObject: no such object",
		},
		{
			name: "bus error pointer",
			err:  dbus.NewError(busd.ErrNameAlreadyExists, nil),
			want: "AlreadyExists",
		},
		{
			name: "timeout",
			err:  fmt.Errorf("call: %w", context.DeadlineExceeded),
			want: "timed out waiting for the mock; is 'bluem serve' running?",
		},
		{
			name: "name taken",
			err:  fmt.Errorf("%w: org.bluem", busd.ErrNameTaken),
			want: "bus name already taken: org.bluem; is another 'bluem serve' running?",
		},
		{
			name: "plain",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserError(tt.err))
		})
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bluem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus: system\nlog_level: warn\n"), 0o600))

	cfg, err := loadConfig(newFlagCommand(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "system", cfg.Bus)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg, err = loadConfig(newFlagCommand(t, "--config", path, "--bus", "session", "--log-level", "debug"))
	require.NoError(t, err)
	assert.Equal(t, "session", cfg.Bus, "flags override the file")
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = loadConfig(newFlagCommand(t, "--log-level", "shouty"))
	assert.Error(t, err)
}

func TestConfigureLogger(t *testing.T) {
	cfg, err := loadConfig(newFlagCommand(t))
	require.NoError(t, err)

	logger, err := configureLogger(newFlagCommand(t), cfg, false)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger, err = configureLogger(newFlagCommand(t), cfg, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel(), "client commands are quiet by default")

	cmd := newFlagCommand(t, "--log-level", "debug")
	cfg, err = loadConfig(cmd)
	require.NoError(t, err)
	logger, err = configureLogger(cmd, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestLogEvents(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bcast := notify.NewBroadcaster(logger)
	stream := bcast.Watch(8)

	done := logEvents(context.Background(), stream, logger)
	bcast.Publish(
		objtree.Mutation{Kind: objtree.ObjectAdded, Path: "/dev", Interfaces: []objtree.Interface{{Name: "org.bluem.Device1"}}},
		objtree.Mutation{Kind: objtree.PropertiesChanged, Path: "/dev", Interface: "org.bluem.Device1",
			Changed: []objtree.Property{{Name: "Connected", Value: true}}},
	)
	stream.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event logger did not stop after the stream closed")
	}

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].Data["seq"])
	assert.Equal(t, "org.bluem.Device1", entries[1].Data["interface"])
	assert.Contains(t, entries[1].Message, "PropertiesChanged")
}

func TestConnect_RejectsBadPath(t *testing.T) {
	err := runConnect(newFlagCommand(t), []string{"not a path"})
	assert.ErrorContains(t, err, "invalid device path")
}

func TestRootCommand(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "add-device", "connect", "monitor"})

	for _, flag := range []string{"config", "log-level", "bus"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "global flag --%s", flag)
	}
}
