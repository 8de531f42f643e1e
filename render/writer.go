package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/timzifer/netconv/devconfig"
	"github.com/timzifer/netconv/serviceio"
)

const (
	// DefaultTimestampLayout is appended to each output file name.
	DefaultTimestampLayout = "20060102150405"
	// DefaultExtension is the output file extension.
	DefaultExtension = ".log"
)

// ErrInvalidDevice is returned for device names that cannot form a file name.
var ErrInvalidDevice = errors.New("invalid device name")

// FileWriter renders device configurations into <dir>/<device>_<timestamp><ext>.
type FileWriter struct {
	dir      string
	tmpl     *Template
	now      func() time.Time
	layout   string
	ext      string
	atomic   bool
	permFile os.FileMode
	permDir  os.FileMode
}

var _ serviceio.ConfigWriter = (*FileWriter)(nil)

// WriterOption customises a FileWriter.
type WriterOption func(*FileWriter) error

// WithClock overrides the clock used for the file name timestamp.
func WithClock(now func() time.Time) WriterOption {
	return func(w *FileWriter) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		w.now = now
		return nil
	}
}

// WithTimestampLayout sets the time layout used in file names.
func WithTimestampLayout(layout string) WriterOption {
	return func(w *FileWriter) error {
		if layout != "" {
			w.layout = layout
		}
		return nil
	}
}

// WithExtension sets the output file extension. A missing leading dot is added.
func WithExtension(ext string) WriterOption {
	return func(w *FileWriter) error {
		if ext == "" {
			return nil
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		w.ext = ext
		return nil
	}
}

// WithAtomic toggles writing through a temporary file and rename.
func WithAtomic(atomic bool) WriterOption {
	return func(w *FileWriter) error {
		w.atomic = atomic
		return nil
	}
}

// NewFileWriter creates a writer that renders tmpl into dir.
func NewFileWriter(dir string, tmpl *Template, opts ...WriterOption) (*FileWriter, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("output directory must not be empty")
	}
	if tmpl == nil {
		return nil, errors.New("template must not be nil")
	}
	w := &FileWriter{
		dir:      dir,
		tmpl:     tmpl,
		now:      time.Now,
		layout:   DefaultTimestampLayout,
		ext:      DefaultExtension,
		atomic:   true,
		permFile: 0o644,
		permDir:  0o755,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Path returns the file the writer would produce for device at time t.
func (w *FileWriter) Path(device string, t time.Time) (string, error) {
	name := strings.TrimSpace(device)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDevice, device)
	}
	return filepath.Join(w.dir, name+"_"+t.Format(w.layout)+w.ext), nil
}

// Write renders cfg and stores it for device.
func (w *FileWriter) Write(ctx context.Context, device string, cfg devconfig.Config) (serviceio.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return serviceio.WriteResult{}, err
	}
	dest, err := w.Path(device, w.now())
	if err != nil {
		return serviceio.WriteResult{}, err
	}

	var buf bytes.Buffer
	missing, err := w.tmpl.Render(&buf, cfg)
	if err != nil {
		return serviceio.WriteResult{}, fmt.Errorf("render %s: %w", device, err)
	}
	if err := os.MkdirAll(w.dir, w.permDir); err != nil {
		return serviceio.WriteResult{}, fmt.Errorf("create output directory: %w", err)
	}
	if w.atomic {
		err = w.writeAtomic(dest, buf.Bytes())
	} else {
		err = os.WriteFile(dest, buf.Bytes(), w.permFile)
	}
	if err != nil {
		return serviceio.WriteResult{}, fmt.Errorf("write %s: %w", dest, err)
	}
	return serviceio.WriteResult{Device: device, Path: dest, MissingMarkers: missing}, nil
}

func (w *FileWriter) writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permFile)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
