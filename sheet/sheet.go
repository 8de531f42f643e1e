// Package sheet reads device parameters from spreadsheet workbooks. Each
// worksheet describes one device.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/timzifer/netconv/parameter"
	"github.com/timzifer/netconv/serviceio"
)

var (
	// ErrSheetNotFound is returned when reading a device the workbook does not contain.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrWorkbookNotFound is returned when the workbook file does not exist.
	ErrWorkbookNotFound = errors.New("parameter sheet file not found")
)

// Workbook is a parameter source backed by an .xlsx file.
type Workbook struct {
	path   string
	file   *excelize.File
	sheets []string
	known  map[string]struct{}
}

var _ serviceio.ParameterSource = (*Workbook)(nil)

// Open loads the workbook at path.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, path)
		}
		return nil, fmt.Errorf("stat parameter sheet file: %w", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open parameter sheet file %s: %w", path, err)
	}
	sheets := f.GetSheetList()
	known := make(map[string]struct{}, len(sheets))
	for _, name := range sheets {
		known[name] = struct{}{}
	}
	return &Workbook{path: path, file: f, sheets: sheets, known: known}, nil
}

// OpenSource adapts Open to serviceio.SourceFactory.
func OpenSource(path string) (serviceio.ParameterSource, error) {
	return Open(path)
}

// Path returns the workbook location.
func (w *Workbook) Path() string { return w.path }

// Sheets returns the worksheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return append([]string(nil), w.sheets...)
}

// Read looks up each location's cell on the given worksheet.
func (w *Workbook) Read(sheet string, locations parameter.Locations) (parameter.Group, error) {
	if _, ok := w.known[sheet]; !ok {
		return parameter.Group{}, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, w.path)
	}
	params := make([]parameter.Parameter, 0, len(locations))
	for _, loc := range locations {
		value, err := w.file.GetCellValue(sheet, loc.CellNumber())
		if err != nil {
			return parameter.Group{}, fmt.Errorf("read %s!%s: %w", sheet, loc.CellNumber(), err)
		}
		p, err := parameter.New(loc.Name(), value, loc.Required())
		if err != nil {
			return parameter.Group{}, err
		}
		params = append(params, p)
	}
	return parameter.NewGroup(params...)
}

// Close releases the underlying workbook.
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Static is an in-memory parameter source keyed by sheet and cell address.
type Static struct {
	order []string
	cells map[string]map[string]string
}

var _ serviceio.ParameterSource = (*Static)(nil)

// NewStatic builds a source from sheet -> cell -> value. Sheets are listed in
// lexical order.
func NewStatic(cells map[string]map[string]string) *Static {
	order := make([]string, 0, len(cells))
	copied := make(map[string]map[string]string, len(cells))
	for sheet, values := range cells {
		order = append(order, sheet)
		inner := make(map[string]string, len(values))
		for cell, value := range values {
			inner[cell] = value
		}
		copied[sheet] = inner
	}
	sort.Strings(order)
	return &Static{order: order, cells: copied}
}

func (s *Static) Sheets() []string { return append([]string(nil), s.order...) }

func (s *Static) Read(sheet string, locations parameter.Locations) (parameter.Group, error) {
	values, ok := s.cells[sheet]
	if !ok {
		return parameter.Group{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	params := make([]parameter.Parameter, 0, len(locations))
	for _, loc := range locations {
		p, err := parameter.New(loc.Name(), values[loc.CellNumber()], loc.Required())
		if err != nil {
			return parameter.Group{}, err
		}
		params = append(params, p)
	}
	return parameter.NewGroup(params...)
}
