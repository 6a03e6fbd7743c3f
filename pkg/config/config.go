package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/bluem"
	"github.com/srg/bluem/internal/objtree"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel      string        `yaml:"log_level" default:"info"`
	Bus           string        `yaml:"bus" default:"session"`
	BusName       string        `yaml:"bus_name" default:"org.bluem"`
	AdapterPath   string        `yaml:"adapter_path" default:"/org/bluem/hci1"`
	AdminPath     string        `yaml:"admin_path" default:"/org/mock"`
	AddressPrefix string        `yaml:"address_prefix" default:"00:16:3e"`
	DeviceName    string        `yaml:"device_name" default:"bluemock"`
	RSSI          int16         `yaml:"rssi" default:"-71"`
	EventBuffer   int           `yaml:"event_buffer" default:"64"`
	CallTimeout   time.Duration `yaml:"call_timeout" default:"5s"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field that can be checked without a bus
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Bus {
	case "session", "system":
	default:
		transport, params, ok := strings.Cut(c.Bus, ":")
		if !ok || transport == "" || !strings.Contains(params, "=") {
			return fmt.Errorf("bus must be session, system or a bus address, got %q", c.Bus)
		}
	}
	if c.BusName == "" {
		return fmt.Errorf("bus_name is required")
	}
	for name, p := range map[string]string{"adapter_path": c.AdapterPath, "admin_path": c.AdminPath} {
		if !dbus.ObjectPath(p).IsValid() || p == "/" {
			return fmt.Errorf("%s %q is not a valid object path", name, p)
		}
	}
	if _, err := bluem.ParseAddressPrefix(c.AddressPrefix); err != nil {
		return err
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("event_buffer must be positive, got %d", c.EventBuffer)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive, got %s", c.CallTimeout)
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// StackOptions converts the config into mock stack options
func (c *Config) StackOptions() (bluem.Options, error) {
	prefix, err := bluem.ParseAddressPrefix(c.AddressPrefix)
	if err != nil {
		return bluem.Options{}, err
	}
	opts := bluem.DefaultOptions()
	opts.AdapterPath = objtree.Path(c.AdapterPath)
	opts.AdminPath = objtree.Path(c.AdminPath)
	opts.AddressPrefix = prefix
	opts.DeviceName = c.DeviceName
	opts.RSSI = c.RSSI
	return opts, nil
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := c.Level()
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
