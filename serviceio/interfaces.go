package serviceio

import (
	"context"

	"github.com/timzifer/netconv/devconfig"
	"github.com/timzifer/netconv/parameter"
)

// ParameterSource provides per-device parameter values addressed by cell.
//
// Implementations must return an error wrapping their own "sheet not found"
// sentinel when Read is called with a device that Sheets does not list.
type ParameterSource interface {
	Sheets() []string
	Read(sheet string, locations parameter.Locations) (parameter.Group, error)
}

// WriteResult describes one rendered device configuration.
type WriteResult struct {
	Device string
	Path   string
	// MissingMarkers lists template markers with no generated commands.
	MissingMarkers []string
}

// ConfigWriter renders a device's generated commands into its final form.
//
// Writers own the output resource. They are invoked once per device, in
// device order, and must not interleave output of different devices.
type ConfigWriter interface {
	Write(ctx context.Context, device string, cfg devconfig.Config) (WriteResult, error)
}

// SourceFactory opens a parameter source from a path.
type SourceFactory func(path string) (ParameterSource, error)
