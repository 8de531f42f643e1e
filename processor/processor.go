// Package processor drives configuration generation: for every device in a
// parameter source it applies each converter rule in declared order, assembles
// the resulting config and hands it to a writer.
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/timzifer/netconv/devconfig"
	"github.com/timzifer/netconv/parameter"
	"github.com/timzifer/netconv/rule"
	"github.com/timzifer/netconv/serviceio"
	"github.com/timzifer/netconv/telemetry"
)

// Processor generates device configurations. It holds no state across runs.
type Processor struct {
	logger    zerolog.Logger
	collector telemetry.Collector
}

// Request bundles the inputs of a CreateConfig run.
type Request struct {
	Source serviceio.ParameterSource
	Rule   *rule.Rule
	Writer serviceio.ConfigWriter
	// ExceptionSheets are devices left out of the run. Unknown names are ignored.
	ExceptionSheets []string
}

// DeviceResult summarises the output for one device.
type DeviceResult struct {
	Device         string
	Path           string
	SkippedRows    int
	EmptyMarkers   []string
	MissingMarkers []string
}

// Result lists the processed devices in source order.
type Result struct {
	Devices []DeviceResult
}

// New constructs a processor with the supplied options.
func New(opts ...Option) (*Processor, error) {
	cfg := settings{
		logger:    zerolog.Nop(),
		telemetry: telemetry.Noop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Processor{logger: cfg.logger, collector: cfg.telemetry}, nil
}

// CreateConfig generates and writes a configuration for every device of the
// request's source, one device at a time.
func (p *Processor) CreateConfig(ctx context.Context, req Request) (Result, error) {
	if req.Source == nil {
		return Result{}, errors.New("parameter source is required")
	}
	if req.Rule == nil {
		return Result{}, errors.New("rule is required")
	}
	if req.Writer == nil {
		return Result{}, errors.New("config writer is required")
	}

	var result Result
	for _, device := range Devices(req.Source, req.ExceptionSheets) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger := p.logger.With().Str("device", device).Logger()
		logger.Debug().Msg("generating configuration")

		cfg, stats, err := p.build(ctx, req.Source, device, req.Rule, logger)
		if err != nil {
			return result, fmt.Errorf("device %s: %w", device, err)
		}
		written, err := req.Writer.Write(ctx, device, cfg)
		if err != nil {
			return result, fmt.Errorf("device %s: %w", device, err)
		}
		for _, marker := range written.MissingMarkers {
			logger.Warn().Str("marker", marker).Msg("template marker has no generated commands")
			p.collector.IncMarkerMissing(marker)
		}
		p.collector.IncConfigWritten(device)
		logger.Info().Str("path", written.Path).Msg("configuration written")

		result.Devices = append(result.Devices, DeviceResult{
			Device:         device,
			Path:           written.Path,
			SkippedRows:    stats.skipped,
			EmptyMarkers:   stats.empty,
			MissingMarkers: written.MissingMarkers,
		})
	}
	return result, nil
}

// BuildConfig applies every converter rule of r to one device and returns the
// assembled config without writing it.
func (p *Processor) BuildConfig(ctx context.Context, source serviceio.ParameterSource, device string, r *rule.Rule) (devconfig.Config, error) {
	if source == nil || r == nil {
		return devconfig.Config{}, errors.New("parameter source and rule are required")
	}
	cfg, _, err := p.build(ctx, source, device, r, p.logger.With().Str("device", device).Logger())
	return cfg, err
}

type buildStats struct {
	skipped int
	empty   []string
}

func (p *Processor) build(ctx context.Context, source serviceio.ParameterSource, device string, r *rule.Rule, logger zerolog.Logger) (devconfig.Config, buildStats, error) {
	var stats buildStats
	common := r.CommonParameter()
	sources := make([]devconfig.Source, 0, len(r.ConverterRules()))
	for _, conv := range r.ConverterRules() {
		if err := ctx.Err(); err != nil {
			return devconfig.Config{}, stats, err
		}
		groups, err := readGroups(source, device, conv.Data())
		if err != nil {
			return devconfig.Config{}, stats, fmt.Errorf("rule %s: %w", conv.Key(), err)
		}
		src, skips, err := conv.MakeConfigSource(groups, common)
		for _, skip := range skips {
			logger.Debug().
				Str("rule", conv.Key()).
				Str("marker", conv.Marker()).
				Int("row", conv.Data().RowFrom()+skip.Index).
				Str("reason", string(skip.Reason)).
				Str("detail", skip.Detail).
				Msg("parameter row skipped")
			p.collector.IncRowSkipped(conv.Marker(), string(skip.Reason))
		}
		stats.skipped += len(skips)
		if err != nil {
			if rule.IsNoRows(err) {
				logger.Warn().
					Str("rule", conv.Key()).
					Str("marker", conv.Marker()).
					Msg("converter rule produced no rows")
				stats.empty = append(stats.empty, conv.Marker())
				continue
			}
			return devconfig.Config{}, stats, err
		}
		sources = append(sources, src)
	}
	cfg, err := devconfig.New(sources...)
	if err != nil {
		return devconfig.Config{}, stats, err
	}
	return cfg, stats, nil
}

func readGroups(source serviceio.ParameterSource, device string, data parameter.LocationSource) ([]parameter.Group, error) {
	rows := data.Expand()
	groups := make([]parameter.Group, 0, len(rows))
	for _, locations := range rows {
		group, err := source.Read(device, locations)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Devices returns the source's sheets minus the exceptions, in source order.
func Devices(source serviceio.ParameterSource, exceptions []string) []string {
	skip := make(map[string]struct{}, len(exceptions))
	for _, name := range exceptions {
		skip[name] = struct{}{}
	}
	sheets := source.Sheets()
	devices := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		if _, ok := skip[sheet]; ok {
			continue
		}
		devices = append(devices, sheet)
	}
	return devices
}
