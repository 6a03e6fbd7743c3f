package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/bluem"
	"github.com/srg/bluem/internal/objtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "session", cfg.Bus)
	assert.Equal(t, "org.bluem", cfg.BusName)
	assert.Equal(t, "/org/bluem/hci1", cfg.AdapterPath)
	assert.Equal(t, "/org/mock", cfg.AdminPath)
	assert.Equal(t, "00:16:3e", cfg.AddressPrefix)
	assert.Equal(t, int16(-71), cfg.RSSI)
	assert.Equal(t, 64, cfg.EventBuffer)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     logrus.Level
	}{
		{
			name:     "creates logger with debug level",
			logLevel: "debug",
			want:     logrus.DebugLevel,
		},
		{
			name:     "creates logger with warn level",
			logLevel: "warn",
			want:     logrus.WarnLevel,
		},
		{
			name:     "falls back to info on a bad level",
			logLevel: "chatty",
			want:     logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel: tt.logLevel,
			}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.want, logger.GetLevel())

			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bluem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"log_level: debug\nbus: system\naddress_prefix: \"02:00:00\"\nrssi: -40\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "system", cfg.Bus)
	assert.Equal(t, "02:00:00", cfg.AddressPrefix)
	assert.Equal(t, int16(-40), cfg.RSSI)
	assert.Equal(t, "org.bluem", cfg.BusName, "unset keys keep their defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rssi: [1, 2]\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"system bus", func(c *Config) { c.Bus = "system" }, true},
		{"bus address", func(c *Config) { c.Bus = "unix:path=/run/bluem.sock" }, true},
		{"bad bus", func(c *Config) { c.Bus = "carrier-pigeon" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"empty bus name", func(c *Config) { c.BusName = "" }, false},
		{"bad adapter path", func(c *Config) { c.AdapterPath = "/org/bluem/" }, false},
		{"root admin path", func(c *Config) { c.AdminPath = "/" }, false},
		{"bad prefix", func(c *Config) { c.AddressPrefix = "00:16" }, false},
		{"zero buffer", func(c *Config) { c.EventBuffer = 0 }, false},
		{"zero timeout", func(c *Config) { c.CallTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestConfig_StackOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdapterPath = "/org/bluem/hci0"
	cfg.DeviceName = "sensor"

	opts, err := cfg.StackOptions()
	require.NoError(t, err)
	assert.Equal(t, objtree.Path("/org/bluem/hci0"), opts.AdapterPath)
	assert.Equal(t, bluem.DefaultAdminPath, opts.AdminPath)
	assert.Equal(t, bluem.DefaultAddressPrefix, opts.AddressPrefix)
	assert.Equal(t, "sensor", opts.DeviceName)
	assert.Equal(t, int16(-71), opts.RSSI)

	cfg.AddressPrefix = "xx"
	_, err = cfg.StackOptions()
	assert.Error(t, err)
}

func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultConfig()
	}
}
