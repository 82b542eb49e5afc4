package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/blegate/internal/devicefactory"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the check command
var OutputFormats = []string{"text", "json"}

// Config holds application configuration
type Config struct {
	Target          string        `yaml:"target"`
	ScanTimeout     time.Duration `yaml:"scan_timeout" default:"25s"`
	LogLevel        string        `yaml:"log_level"`
	OutputFormat    string        `yaml:"output_format" default:"text"`
	Backend         string        `yaml:"backend" default:"go-ble"`
	AllowDuplicates bool          `yaml:"allow_duplicates"`
	HookScript      string        `yaml:"hook_script"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML config file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values
func (c *Config) Validate() error {
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("scan_timeout must be positive, got %s", c.ScanTimeout)
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid format '%s': must be one of %v", c.OutputFormat, OutputFormats)
	}
	if !slices.Contains(devicefactory.Backends, c.Backend) {
		return fmt.Errorf("invalid backend '%s': must be one of %v", c.Backend, devicefactory.Backends)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. Empty means silent (panic level).
func (c *Config) Level() (logrus.Level, error) {
	switch c.LogLevel {
	case "":
		return logrus.PanicLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.PanicLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	level, err := c.Level()
	if err != nil {
		level = logrus.PanicLevel
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}
