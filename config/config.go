// Package config holds the runtime settings of the netconv tool. Settings are
// optional: every field has a default, and an absent settings file yields
// Default().
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimestampLayout is the time layout used in output file names.
	DefaultTimestampLayout = "20060102150405"
	// DefaultExtension is the output file extension.
	DefaultExtension = ".log"
	// TelemetryProviderPrometheus selects the Prometheus collector.
	TelemetryProviderPrometheus = "prometheus"
)

// LokiConfig configures optional Loki integration for logging.
type LokiConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Labels  map[string]string `yaml:"labels"`
}

// LoggingConfig encapsulates logging options.
type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	Loki   LokiConfig `yaml:"loki"`
}

// TelemetryConfig controls metric collection.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider,omitempty"`
	// Textfile receives the metrics in text exposition format after a run.
	Textfile string `yaml:"textfile,omitempty"`
}

// OutputConfig controls how generated configurations are written.
type OutputConfig struct {
	TimestampLayout string `yaml:"timestamp_layout,omitempty"`
	Extension       string `yaml:"extension,omitempty"`
	Atomic          *bool  `yaml:"atomic,omitempty"`
}

// Config is the root settings structure.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Output    OutputConfig    `yaml:"output"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and decodes the settings file from disk. An empty path returns
// Default().
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(raw)
}

// Parse decodes settings from YAML. Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Telemetry.Enabled && c.Telemetry.Provider == "" {
		c.Telemetry.Provider = TelemetryProviderPrometheus
	}
	if c.Output.TimestampLayout == "" {
		c.Output.TimestampLayout = DefaultTimestampLayout
	}
	if c.Output.Extension == "" {
		c.Output.Extension = DefaultExtension
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.Loki.Enabled && strings.TrimSpace(c.Logging.Loki.URL) == "" {
		return errors.New("logging.loki.url is required when loki is enabled")
	}
	if c.Telemetry.Enabled {
		switch strings.ToLower(c.Telemetry.Provider) {
		case "", TelemetryProviderPrometheus:
		default:
			return fmt.Errorf("telemetry.provider: unsupported value %q", c.Telemetry.Provider)
		}
	}
	return nil
}

// AtomicWrites reports whether output files are written via temp file and
// rename. Defaults to true.
func (c *Config) AtomicWrites() bool {
	if c == nil || c.Output.Atomic == nil {
		return true
	}
	return *c.Output.Atomic
}
