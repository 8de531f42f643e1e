package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/timzifer/netconv/config"
	"github.com/timzifer/netconv/internal/logging"
	"github.com/timzifer/netconv/internal/reload"
	"github.com/timzifer/netconv/processor"
	"github.com/timzifer/netconv/render"
	"github.com/timzifer/netconv/rule"
	"github.com/timzifer/netconv/serviceio"
	"github.com/timzifer/netconv/sheet"
	"github.com/timzifer/netconv/telemetry"
)

var errRequiredPathMissing = errors.New("required path does not exist")

type createConfigOptions struct {
	configSampleFile   string
	parameterSheetFile string
	ruleFile           string
	outputPath         string
	exceptionSheets    []string
	settingsFile       string
	watch              time.Duration
	// openSource defaults to sheet.OpenSource.
	openSource serviceio.SourceFactory
}

func newCreateConfigCmd() *cobra.Command {
	opts := &createConfigOptions{}
	cmd := &cobra.Command{
		Use:   "create_config",
		Short: "Create one configuration file per device",
		Example: `  netconv create_config -c sample.txt -p params.xlsx -r rules.yml -o out/
  netconv create_config -c sample.txt -p params.xlsx -r rules.yml -o out/ -e lab01,lab02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runCreateConfig(ctx, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configSampleFile, "config_sample_file", "c", "", "configuration template with %%MARKER%% lines")
	flags.StringVarP(&opts.parameterSheetFile, "parameter_sheet_file", "p", "", "parameter workbook (.xlsx), one sheet per device")
	flags.StringVarP(&opts.ruleFile, "rule_file", "r", "", "rule document (YAML)")
	flags.StringVarP(&opts.outputPath, "output_path", "o", "", "directory receiving the generated files")
	flags.StringSliceVarP(&opts.exceptionSheets, "exception_sheets", "e", nil, "comma separated sheets to leave out")
	flags.StringVar(&opts.settingsFile, "settings", "", "optional settings file (logging, telemetry, output naming)")
	flags.DurationVar(&opts.watch, "watch", 0, "poll the input files at this interval and regenerate on change (0 disables)")
	for _, name := range []string{"config_sample_file", "parameter_sheet_file", "rule_file", "output_path"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (o *createConfigOptions) requiredPaths() []string {
	return []string{o.configSampleFile, o.parameterSheetFile, o.ruleFile, o.outputPath}
}

func checkPaths(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", errRequiredPathMissing, path)
			}
			return err
		}
	}
	return nil
}

func runCreateConfig(ctx context.Context, opts *createConfigOptions) error {
	if err := checkPaths(opts.requiredPaths()...); err != nil {
		return err
	}

	settings, err := config.Load(opts.settingsFile)
	if err != nil {
		return err
	}
	logger, cleanup, err := logging.Setup(settings.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	collector, err := processor.NewTelemetryCollector(settings.Telemetry, reg)
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry disabled")
		collector = telemetry.Noop()
	}

	if err := generate(ctx, opts, settings, logger, collector); err != nil {
		return err
	}
	writeTextfile(settings, reg, logger)

	if opts.watch <= 0 {
		return nil
	}
	watcher, err := reload.NewWatcher(opts.configSampleFile, opts.parameterSheetFile, opts.ruleFile, opts.settingsFile)
	if err != nil {
		return err
	}
	logger.Info().Dur("interval", opts.watch).Msg("watching input files")
	for {
		changed, err := watcher.Wait(ctx, opts.watch)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Info().Strs("files", changed).Msg("input changed, regenerating")
		// Output naming and the textfile path follow the settings file; the
		// logger and collector keep their startup configuration.
		if next, err := config.Load(opts.settingsFile); err != nil {
			logger.Error().Err(err).Msg("settings reload failed, keeping previous settings")
		} else {
			settings = next
		}
		if err := generate(ctx, opts, settings, logger, collector); err != nil {
			logger.Error().Err(err).Msg("configuration generation failed")
			continue
		}
		writeTextfile(settings, reg, logger)
	}
}

func generate(ctx context.Context, opts *createConfigOptions, settings *config.Config, logger zerolog.Logger, collector telemetry.Collector) error {
	r, err := rule.Load(opts.ruleFile)
	if err != nil {
		return err
	}
	tmpl, err := render.LoadTemplate(opts.configSampleFile)
	if err != nil {
		return err
	}
	openSource := opts.openSource
	if openSource == nil {
		openSource = sheet.OpenSource
	}
	source, err := openSource(opts.parameterSheetFile)
	if err != nil {
		return err
	}
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	writer, err := render.NewFileWriter(opts.outputPath, tmpl,
		render.WithTimestampLayout(settings.Output.TimestampLayout),
		render.WithExtension(settings.Output.Extension),
		render.WithAtomic(settings.AtomicWrites()),
	)
	if err != nil {
		return err
	}

	proc, err := processor.New(processor.WithLogger(logger), processor.WithTelemetry(collector))
	if err != nil {
		return err
	}
	result, err := proc.CreateConfig(ctx, processor.Request{
		Source:          source,
		Rule:            r,
		Writer:          writer,
		ExceptionSheets: trimAll(opts.exceptionSheets),
	})
	if err != nil {
		return err
	}
	logger.Info().Int("devices", len(result.Devices)).Str("output_path", opts.outputPath).Msg("configuration generation finished")
	return nil
}

func writeTextfile(settings *config.Config, reg *prometheus.Registry, logger zerolog.Logger) {
	path := settings.Telemetry.Textfile
	if !settings.Telemetry.Enabled || path == "" {
		return
	}
	if err := telemetry.WriteTextfile(path, reg); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to write telemetry textfile")
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
