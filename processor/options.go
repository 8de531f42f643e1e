package processor

import (
	"github.com/rs/zerolog"

	"github.com/timzifer/netconv/telemetry"
)

// Option configures the processor during construction.
type Option func(*settings) error

type settings struct {
	logger    zerolog.Logger
	telemetry telemetry.Collector
}

// WithLogger provides a custom logger instance for the processor.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *settings) error {
		if cfg == nil {
			return nil
		}
		cfg.logger = logger
		return nil
	}
}

// WithTelemetry injects a collector. A nil collector falls back to telemetry.Noop.
func WithTelemetry(collector telemetry.Collector) Option {
	return func(cfg *settings) error {
		if cfg == nil {
			return nil
		}
		if collector == nil {
			collector = telemetry.Noop()
		}
		cfg.telemetry = collector
		return nil
	}
}
