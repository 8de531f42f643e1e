package parameter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCellNumber is returned for addresses not shaped like "AB12".
	ErrInvalidCellNumber = errors.New("cell number must be uppercase column letters followed by a row number")
	// ErrInvalidColumnNumber is returned for columns that are not uppercase letters only.
	ErrInvalidColumnNumber = errors.New("column number must consist of uppercase letters")
	// ErrNoColumnLocations is returned when a location source declares no columns.
	ErrNoColumnLocations = errors.New("parameter column locations must not be empty")
	// ErrInvalidRowRange is returned when row_from is below 1 or greater than row_to.
	ErrInvalidRowRange = errors.New("invalid row range")
)

var (
	cellNumberPattern   = regexp.MustCompile(`^[A-Z]+[1-9][0-9]*$`)
	columnNumberPattern = regexp.MustCompile(`^[A-Z]+$`)
)

// Location addresses a single cell holding one parameter.
type Location struct {
	name       string
	cellNumber string
	required   bool
}

// NewLocation validates a cell address such as "C12".
func NewLocation(name, cellNumber string, required bool) (Location, error) {
	if strings.TrimSpace(name) == "" {
		return Location{}, ErrEmptyName
	}
	if !cellNumberPattern.MatchString(cellNumber) {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidCellNumber, cellNumber)
	}
	return Location{name: name, cellNumber: cellNumber, required: required}, nil
}

func (l Location) Name() string       { return l.name }
func (l Location) CellNumber() string { return l.cellNumber }
func (l Location) Required() bool     { return l.required }

// Locations holds the addresses of one full row of parameters.
type Locations []Location

// ColumnLocation names a column without a row.
type ColumnLocation struct {
	name         string
	columnNumber string
	required     bool
}

// NewColumnLocation validates a column such as "AB".
func NewColumnLocation(name, columnNumber string, required bool) (ColumnLocation, error) {
	if strings.TrimSpace(name) == "" {
		return ColumnLocation{}, ErrEmptyName
	}
	if !columnNumberPattern.MatchString(columnNumber) {
		return ColumnLocation{}, fmt.Errorf("%w: %q", ErrInvalidColumnNumber, columnNumber)
	}
	return ColumnLocation{name: name, columnNumber: columnNumber, required: required}, nil
}

func (c ColumnLocation) Name() string         { return c.name }
func (c ColumnLocation) ColumnNumber() string { return c.columnNumber }
func (c ColumnLocation) Required() bool       { return c.required }

// LocationSource describes a block of rows sharing the same column layout.
type LocationSource struct {
	columns []ColumnLocation
	rowFrom int
	rowTo   int
}

// NewLocationSource validates the column list and the inclusive row range.
func NewLocationSource(columns []ColumnLocation, rowFrom, rowTo int) (LocationSource, error) {
	if len(columns) == 0 {
		return LocationSource{}, ErrNoColumnLocations
	}
	if rowFrom < 1 {
		return LocationSource{}, fmt.Errorf("%w: row_from %d must be at least 1", ErrInvalidRowRange, rowFrom)
	}
	if rowTo < rowFrom {
		return LocationSource{}, fmt.Errorf("%w: row_to %d is less than row_from %d", ErrInvalidRowRange, rowTo, rowFrom)
	}
	cols := make([]ColumnLocation, len(columns))
	copy(cols, columns)
	return LocationSource{columns: cols, rowFrom: rowFrom, rowTo: rowTo}, nil
}

func (s LocationSource) RowFrom() int { return s.rowFrom }
func (s LocationSource) RowTo() int   { return s.rowTo }

// Columns returns a copy of the declared column locations.
func (s LocationSource) Columns() []ColumnLocation {
	out := make([]ColumnLocation, len(s.columns))
	copy(out, s.columns)
	return out
}

// Rows returns the number of rows covered by the source.
func (s LocationSource) Rows() int {
	if len(s.columns) == 0 {
		return 0
	}
	return s.rowTo - s.rowFrom + 1
}

// Expand returns one Locations per row in [row_from, row_to], in row order.
// Each row combines every column, in declared order, with the row number.
func (s LocationSource) Expand() []Locations {
	out := make([]Locations, 0, s.Rows())
	for row := s.rowFrom; row <= s.rowTo; row++ {
		suffix := strconv.Itoa(row)
		locs := make(Locations, 0, len(s.columns))
		for _, col := range s.columns {
			locs = append(locs, Location{
				name:       col.name,
				cellNumber: col.columnNumber + suffix,
				required:   col.required,
			})
		}
		out = append(out, locs)
	}
	return out
}
