// Package devconfig holds the generated command blocks of a single device,
// keyed by the template marker they replace.
package devconfig

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidMarker is returned for markers not shaped like %%NAME%%.
	ErrInvalidMarker = errors.New("marker must match %%WORD%%")
	// ErrEmptyCommandsGroup is returned when a source carries no command groups.
	ErrEmptyCommandsGroup = errors.New("commands group must not be empty")
	// ErrDuplicateMarker is returned when two sources share a marker.
	ErrDuplicateMarker = errors.New("duplicate marker")
)

var markerPattern = regexp.MustCompile(`^%{2}\w+%{2}$`)

// IsMarker reports whether s is a well formed marker token.
func IsMarker(s string) bool {
	return len(s) >= 5 && markerPattern.MatchString(s)
}

// Source is the rendered output for one marker: one command group per
// parameter row, each group an ordered list of command lines.
type Source struct {
	marker        string
	commandsGroup [][]string
}

// NewSource validates the marker and copies the command groups.
func NewSource(marker string, commandsGroup [][]string) (Source, error) {
	if !IsMarker(marker) {
		return Source{}, fmt.Errorf("%w: %q", ErrInvalidMarker, marker)
	}
	if len(commandsGroup) == 0 {
		return Source{}, fmt.Errorf("%w: %s", ErrEmptyCommandsGroup, marker)
	}
	return Source{marker: marker, commandsGroup: cloneGroups(commandsGroup)}, nil
}

func (s Source) Marker() string { return s.marker }

// CommandsGroup returns a copy of the source's command groups.
func (s Source) CommandsGroup() [][]string { return cloneGroups(s.commandsGroup) }

// Config is the flat collection of sources generated for one device.
type Config struct {
	sources []Source
	index   map[string]int
}

// New builds a config, rejecting duplicate markers.
func New(sources ...Source) (Config, error) {
	cfg := Config{
		sources: make([]Source, 0, len(sources)),
		index:   make(map[string]int, len(sources)),
	}
	for _, src := range sources {
		if _, exists := cfg.index[src.marker]; exists {
			return Config{}, fmt.Errorf("%w: %s", ErrDuplicateMarker, src.marker)
		}
		cfg.index[src.marker] = len(cfg.sources)
		cfg.sources = append(cfg.sources, src)
	}
	return cfg, nil
}

// Markers returns every marker in declaration order.
func (c Config) Markers() []string {
	out := make([]string, 0, len(c.sources))
	for _, src := range c.sources {
		out = append(out, src.marker)
	}
	return out
}

// Has reports whether a source declares the marker.
func (c Config) Has(marker string) bool {
	_, ok := c.index[marker]
	return ok
}

// CommandsGroup returns the marker's command groups, or an empty list when no
// source declares the marker.
func (c Config) CommandsGroup(marker string) [][]string {
	idx, ok := c.index[marker]
	if !ok {
		return [][]string{}
	}
	return c.sources[idx].CommandsGroup()
}

// Lines flattens the marker's command groups into output lines.
func (c Config) Lines(marker string) []string {
	var lines []string
	for _, group := range c.CommandsGroup(marker) {
		lines = append(lines, group...)
	}
	return lines
}

// Len returns the number of sources.
func (c Config) Len() int { return len(c.sources) }

func cloneGroups(groups [][]string) [][]string {
	out := make([][]string, len(groups))
	for i, group := range groups {
		out[i] = append([]string(nil), group...)
	}
	return out
}
