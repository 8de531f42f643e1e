// Package render substitutes generated command groups into a configuration
// template and writes one file per device.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/timzifer/netconv/devconfig"
)

// ErrTemplateNotFound is returned when the template file does not exist.
var ErrTemplateNotFound = errors.New("config sample file not found")

// markerLine matches a line consisting solely of a marker.
var markerLine = regexp.MustCompile(`^%{2}\w+%{2}$`)

type line struct {
	text   string
	eol    string
	marker string
}

// Template is a parsed configuration sample. Lines whose trimmed content is a
// single marker are substitution points; every other line is copied verbatim.
type Template struct {
	lines   []line
	markers []string
	eol     string
}

// LoadTemplate reads and parses the template at path.
func LoadTemplate(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("open config sample file: %w", err)
	}
	defer f.Close()
	tmpl, err := ParseTemplate(f)
	if err != nil {
		return nil, fmt.Errorf("read config sample file %s: %w", path, err)
	}
	return tmpl, nil
}

// ParseTemplate reads a template from r.
func ParseTemplate(r io.Reader) (*Template, error) {
	br := bufio.NewReader(r)
	tmpl := &Template{eol: "\n"}
	eolSeen := false
	seen := make(map[string]struct{})
	for {
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			l := splitEOL(text)
			if !eolSeen && l.eol != "" {
				tmpl.eol, eolSeen = l.eol, true
			}
			if trimmed := strings.TrimSpace(l.text); markerLine.MatchString(trimmed) {
				l.marker = trimmed
				if _, ok := seen[trimmed]; !ok {
					seen[trimmed] = struct{}{}
					tmpl.markers = append(tmpl.markers, trimmed)
				}
			}
			tmpl.lines = append(tmpl.lines, l)
		}
		if err == io.EOF {
			return tmpl, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// splitEOL separates a line from its terminator ("\n", "\r\n" or none).
func splitEOL(text string) line {
	for _, eol := range []string{"\r\n", "\n"} {
		if strings.HasSuffix(text, eol) {
			return line{text: strings.TrimSuffix(text, eol), eol: eol}
		}
	}
	return line{text: text}
}

// Markers lists the distinct markers in order of first appearance.
func (t *Template) Markers() []string {
	return append([]string(nil), t.markers...)
}

// Render writes the template to w, replacing each marker line with the
// marker's commands, one per line. Generated lines reuse the marker line's
// terminator, or the template's first one on an unterminated last line.
// Markers without a source in cfg produce no output and are returned in order
// of appearance.
func (t *Template) Render(w io.Writer, cfg devconfig.Config) ([]string, error) {
	bw := bufio.NewWriter(w)
	var missing []string
	reported := make(map[string]struct{})
	for _, l := range t.lines {
		if l.marker == "" {
			if _, err := bw.WriteString(l.text); err != nil {
				return nil, err
			}
			if _, err := bw.WriteString(l.eol); err != nil {
				return nil, err
			}
			continue
		}
		if !cfg.Has(l.marker) {
			if _, ok := reported[l.marker]; !ok {
				reported[l.marker] = struct{}{}
				missing = append(missing, l.marker)
			}
			continue
		}
		eol := l.eol
		if eol == "" {
			eol = t.eol
		}
		for _, cmd := range cfg.Lines(l.marker) {
			if _, err := bw.WriteString(cmd); err != nil {
				return nil, err
			}
			if _, err := bw.WriteString(eol); err != nil {
				return nil, err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return missing, nil
}
