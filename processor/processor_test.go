package processor

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/timzifer/netconv/config"
	"github.com/timzifer/netconv/devconfig"
	"github.com/timzifer/netconv/rule"
	"github.com/timzifer/netconv/serviceio"
	"github.com/timzifer/netconv/sheet"
)

const ruleDocument = `converter_rules:
  HostName:
    marker: "%%HOSTNAME%%"
    data:
      parameter_column_locations:
        - name: HostName
          column_number: B
          required: true
      row_from: 1
      row_to: 1
    commands:
      - hostname {HostName}
  Interfaces:
    marker: "%%INTERFACES%%"
    data:
      parameter_column_locations:
        - name: Interface
          column_number: B
          required: true
        - name: Vlan
          column_number: C
      row_from: 2
      row_to: 4
    commands:
      - interface {Interface}
      - switchport access vlan {Vlan}
    validations:
      - validator_type: NumberRangeValidator
        parameter_name: Vlan
        min: 1
        max: 4094
    options:
      filling_each_commands_group: true
`

type recordingWriter struct {
	configs map[string]devconfig.Config
	order   []string
	missing []string
	err     error
}

func (w *recordingWriter) Write(_ context.Context, device string, cfg devconfig.Config) (serviceio.WriteResult, error) {
	if w.err != nil {
		return serviceio.WriteResult{}, w.err
	}
	if w.configs == nil {
		w.configs = map[string]devconfig.Config{}
	}
	w.configs[device] = cfg
	w.order = append(w.order, device)
	return serviceio.WriteResult{Device: device, Path: device + ".log", MissingMarkers: w.missing}, nil
}

type countingCollector struct {
	skipped map[string]int
	written []string
	missing []string
}

func (c *countingCollector) IncRowSkipped(marker, reason string) {
	if c.skipped == nil {
		c.skipped = map[string]int{}
	}
	c.skipped[marker+"/"+reason]++
}

func (c *countingCollector) IncConfigWritten(device string) { c.written = append(c.written, device) }
func (c *countingCollector) IncMarkerMissing(marker string) { c.missing = append(c.missing, marker) }

func testRule(t *testing.T) *rule.Rule {
	t.Helper()
	r, err := rule.Decode([]byte(ruleDocument))
	require.NoError(t, err)
	return r
}

func testSource() *sheet.Static {
	return sheet.NewStatic(map[string]map[string]string{
		"sw01": {
			"B1": "sw01",
			"B2": "Gi0/1", "C2": "10",
			"B3": "", "C3": "20",
			"B4": "Gi0/3", "C4": "9999",
		},
		"sw02": {
			"B1": "sw02",
			"B2": "Gi0/1", "C2": "30",
			"B3": "Gi0/2", "C3": "40",
			"B4": "Gi0/3", "C4": "50",
		},
		"lab": {
			"B1": "lab",
		},
	})
}

func TestCreateConfig(t *testing.T) {
	collector := &countingCollector{}
	proc, err := New(WithTelemetry(collector))
	require.NoError(t, err)

	writer := &recordingWriter{}
	res, err := proc.CreateConfig(context.Background(), Request{
		Source:          testSource(),
		Rule:            testRule(t),
		Writer:          writer,
		ExceptionSheets: []string{"lab", "unknown"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"sw01", "sw02"}, writer.order)
	require.Len(t, res.Devices, 2)
	require.Equal(t, 2, res.Devices[0].SkippedRows)
	require.Equal(t, 0, res.Devices[1].SkippedRows)

	sw01 := writer.configs["sw01"]
	require.Equal(t, []string{"%%HOSTNAME%%", "%%INTERFACES%%"}, sw01.Markers())
	if diff := cmp.Diff([][]string{{"hostname sw01"}}, sw01.CommandsGroup("%%HOSTNAME%%")); diff != "" {
		t.Fatalf("hostname mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{"interface Gi0/1", "switchport access vlan 10", "!"}}
	if diff := cmp.Diff(want, sw01.CommandsGroup("%%INTERFACES%%")); diff != "" {
		t.Fatalf("interfaces mismatch (-want +got):\n%s", diff)
	}

	sw02 := writer.configs["sw02"]
	require.Len(t, sw02.CommandsGroup("%%INTERFACES%%"), 3)

	require.Equal(t, map[string]int{
		"%%INTERFACES%%/required":   1,
		"%%INTERFACES%%/validation": 1,
	}, collector.skipped)
	require.Equal(t, []string{"sw01", "sw02"}, collector.written)
}

func TestCreateConfigAllRowsSkipped(t *testing.T) {
	var logs bytes.Buffer
	proc, err := New(WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	source := sheet.NewStatic(map[string]map[string]string{
		"sw01": {"B1": "sw01", "C2": "10"},
	})
	writer := &recordingWriter{}
	res, err := proc.CreateConfig(context.Background(), Request{Source: source, Rule: testRule(t), Writer: writer})
	require.NoError(t, err)
	require.Equal(t, []string{"%%INTERFACES%%"}, res.Devices[0].EmptyMarkers)

	cfg := writer.configs["sw01"]
	require.False(t, cfg.Has("%%INTERFACES%%"))
	require.Empty(t, cfg.CommandsGroup("%%INTERFACES%%"))
	require.Contains(t, logs.String(), "converter rule produced no rows")
}

func TestCreateConfigReportsMissingMarkers(t *testing.T) {
	collector := &countingCollector{}
	proc, err := New(WithTelemetry(collector))
	require.NoError(t, err)

	writer := &recordingWriter{missing: []string{"%%ROUTES%%"}}
	source := sheet.NewStatic(map[string]map[string]string{
		"sw02": {"B1": "sw02", "B2": "Gi0/1", "C2": "30"},
	})
	res, err := proc.CreateConfig(context.Background(), Request{Source: source, Rule: testRule(t), Writer: writer})
	require.NoError(t, err)
	require.Equal(t, []string{"%%ROUTES%%"}, res.Devices[0].MissingMarkers)
	require.Equal(t, []string{"%%ROUTES%%"}, collector.missing)
}

func TestCreateConfigPropagatesWriterError(t *testing.T) {
	proc, err := New()
	require.NoError(t, err)

	boom := errors.New("disk full")
	_, err = proc.CreateConfig(context.Background(), Request{
		Source: testSource(),
		Rule:   testRule(t),
		Writer: &recordingWriter{err: boom},
	})
	require.ErrorIs(t, err, boom)
}

func TestCreateConfigRequiresInputs(t *testing.T) {
	proc, err := New()
	require.NoError(t, err)
	_, err = proc.CreateConfig(context.Background(), Request{})
	require.Error(t, err)
}

func TestCreateConfigCancelled(t *testing.T) {
	proc, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = proc.CreateConfig(ctx, Request{Source: testSource(), Rule: testRule(t), Writer: &recordingWriter{}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildConfigUnknownDevice(t *testing.T) {
	proc, err := New()
	require.NoError(t, err)

	_, err = proc.BuildConfig(context.Background(), testSource(), "sw09", testRule(t))
	require.ErrorIs(t, err, sheet.ErrSheetNotFound)
}

func TestBuildConfigUnresolvedPlaceholder(t *testing.T) {
	doc := `converter_rules:
  HostName:
    marker: "%%HOSTNAME%%"
    data:
      parameter_column_locations:
        - name: HostName
          column_number: B
      row_from: 1
      row_to: 1
    commands:
      - hostname {Name}
`
	r, err := rule.Decode([]byte(doc))
	require.NoError(t, err)

	proc, err := New()
	require.NoError(t, err)
	_, err = proc.BuildConfig(context.Background(), testSource(), "sw01", r)
	require.ErrorIs(t, err, rule.ErrUnresolvedPlaceholder)
}

func TestDevicesKeepsSourceOrder(t *testing.T) {
	require.Equal(t, []string{"lab", "sw02"}, Devices(testSource(), []string{"sw01"}))
}

func TestNewTelemetryCollector(t *testing.T) {
	collector, err := NewTelemetryCollector(config.TelemetryConfig{}, nil)
	require.NoError(t, err)
	require.NotNil(t, collector)

	_, err = NewTelemetryCollector(config.TelemetryConfig{Enabled: true, Provider: "statsd"}, nil)
	require.Error(t, err)

	collector, err = NewTelemetryCollector(config.TelemetryConfig{Enabled: true}, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, collector)
}
