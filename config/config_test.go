package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected info level, got %q", cfg.Logging.Level)
	}
	if cfg.Output.TimestampLayout != DefaultTimestampLayout {
		t.Fatalf("unexpected layout %q", cfg.Output.TimestampLayout)
	}
	if cfg.Output.Extension != DefaultExtension {
		t.Fatalf("unexpected extension %q", cfg.Output.Extension)
	}
	if !cfg.AtomicWrites() {
		t.Fatalf("expected atomic writes by default")
	}
	if cfg.Telemetry.Enabled {
		t.Fatalf("telemetry should be disabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netconv.yaml")
	content := `logging:
  level: debug
  format: text
  loki:
    enabled: true
    url: http://loki:3100/loki/api/v1/push
    labels:
      app: netconv
telemetry:
  enabled: true
  textfile: /var/lib/node_exporter/netconv.prom
output:
  timestamp_layout: "2006-01-02"
  extension: .cfg
  atomic: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Logging.Loki.Labels["app"] != "netconv" {
		t.Fatalf("expected loki labels, got %+v", cfg.Logging.Loki.Labels)
	}
	if cfg.Telemetry.Provider != TelemetryProviderPrometheus {
		t.Fatalf("expected prometheus provider, got %q", cfg.Telemetry.Provider)
	}
	if cfg.Output.TimestampLayout != "2006-01-02" || cfg.Output.Extension != ".cfg" {
		t.Fatalf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.AtomicWrites() {
		t.Fatalf("expected atomic writes to be disabled")
	}
}

func TestParseRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "logging:\n  colour: red\n",
		"bad format":       "logging:\n  format: xml\n",
		"loki without url": "logging:\n  loki:\n    enabled: true\n",
		"bad provider":     "telemetry:\n  enabled: true\n  provider: statsd\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Output.Extension != DefaultExtension {
		t.Fatalf("expected default extension, got %q", cfg.Output.Extension)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
