package telemetry

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures events emitted while generating device configurations.
//
// Calls happen inline for every skipped row, so implementations should be
// cheap.
type Collector interface {
	IncRowSkipped(marker, reason string)
	IncConfigWritten(device string)
	IncMarkerMissing(marker string)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncRowSkipped(string, string) {}
func (noopCollector) IncConfigWritten(string)      {}
func (noopCollector) IncMarkerMissing(string)      {}

// PrometheusCollector exposes generation counters via Prometheus.
type PrometheusCollector struct {
	rowsSkipped    *prometheus.CounterVec
	configsWritten *prometheus.CounterVec
	markersMissing *prometheus.CounterVec
}

type counterSlot struct {
	mu      sync.Mutex
	counter *prometheus.CounterVec
}

var (
	rowsSkippedCounter    counterSlot
	configsWrittenCounter counterSlot
	markerMissingCounter  counterSlot
)

// register creates the counter once and reuses an already registered one.
func (s *counterSlot) register(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) (*prometheus.CounterVec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counter != nil {
		return s.counter, nil
	}
	counter := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		counter = existing
	}
	s.counter = counter
	return counter, nil
}

func (s *counterSlot) reset() {
	s.mu.Lock()
	s.counter = nil
	s.mu.Unlock()
}

// NewPrometheusCollector registers the required metrics with the provided registerer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	skipped, err := rowsSkippedCounter.register(reg, prometheus.CounterOpts{
		Name: "netconv_rows_skipped_total",
		Help: "Number of parameter rows skipped by required-parameter or validation gating.",
	}, []string{"marker", "reason"})
	if err != nil {
		return nil, err
	}
	written, err := configsWrittenCounter.register(reg, prometheus.CounterOpts{
		Name: "netconv_configs_written_total",
		Help: "Number of device configuration files written.",
	}, []string{"device"})
	if err != nil {
		return nil, err
	}
	missing, err := markerMissingCounter.register(reg, prometheus.CounterOpts{
		Name: "netconv_template_marker_missing_total",
		Help: "Number of template markers rendered without generated commands.",
	}, []string{"marker"})
	if err != nil {
		return nil, err
	}
	return &PrometheusCollector{
		rowsSkipped:    skipped,
		configsWritten: written,
		markersMissing: missing,
	}, nil
}

// IncRowSkipped counts a gated row for a marker.
func (p *PrometheusCollector) IncRowSkipped(marker, reason string) {
	if p == nil || p.rowsSkipped == nil {
		return
	}
	p.rowsSkipped.WithLabelValues(marker, reason).Inc()
}

// IncConfigWritten counts a written device configuration.
func (p *PrometheusCollector) IncConfigWritten(device string) {
	if p == nil || p.configsWritten == nil {
		return
	}
	p.configsWritten.WithLabelValues(device).Inc()
}

// IncMarkerMissing counts a template marker that had no source.
func (p *PrometheusCollector) IncMarkerMissing(marker string) {
	if p == nil || p.markersMissing == nil {
		return
	}
	p.markersMissing.WithLabelValues(marker).Inc()
}

// WriteTextfile stores the gathered metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return prometheus.WriteToTextfile(path, g)
}
