// Package dataset holds the in-memory tabular model shared by the pipeline:
// an ordered sequence of named columns of equal length, each with an inferred
// semantic kind (numeric, text, temporal) and per-cell missing tracking.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindText     Kind = "text"
	KindTemporal Kind = "temporal"
)

type Cell struct {
	Raw     string
	Missing bool
	// Number is valid when the owning column is numeric and the cell is not
	// missing.
	Number float64
}

type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Missing {
			n++
		}
	}
	return n
}

// MissingPercent returns the missing-cell percentage rounded to one decimal.
// A column with zero rows reports 0 rather than dividing by zero.
func (c *Column) MissingPercent() float64 {
	if len(c.Cells) == 0 {
		return 0
	}
	p := float64(c.MissingCount()) / float64(len(c.Cells)) * 100
	return roundTo(p, 1)
}

type Dataset struct {
	cols []Column
}

// FromRecords builds a dataset from a header row and data records, inferring
// each column's kind from its non-missing cells. Every record must have
// exactly one cell per header entry.
func FromRecords(header []string, records [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i+1, len(rec), len(header))
		}
	}

	cols := make([]Column, len(header))
	for ci, name := range header {
		raw := make([]string, len(records))
		for ri, rec := range records {
			raw[ri] = rec[ci]
		}
		cols[ci] = buildColumn(name, raw)
	}
	return &Dataset{cols: cols}, nil
}

func buildColumn(name string, raw []string) Column {
	kind := inferKind(raw)
	cells := make([]Cell, len(raw))
	for i, r := range raw {
		cell := Cell{Raw: r, Missing: IsMissing(r)}
		if kind == KindNumeric && !cell.Missing {
			cell.Number, _ = strconv.ParseFloat(strings.TrimSpace(r), 64)
		}
		cells[i] = cell
	}
	return Column{Name: name, Kind: kind, Cells: cells}
}

func (d *Dataset) Rows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0].Cells)
}

func (d *Dataset) ColumnCount() int { return len(d.cols) }

func (d *Dataset) Columns() []Column { return d.cols }

func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.cols {
		if d.cols[i].Name == name {
			return &d.cols[i], true
		}
	}
	return nil, false
}

// Header returns the column names in declaration order.
func (d *Dataset) Header() []string {
	header := make([]string, len(d.cols))
	for i, c := range d.cols {
		header[i] = c.Name
	}
	return header
}

// Records returns the raw cell values row by row.
func (d *Dataset) Records() [][]string {
	records := make([][]string, d.Rows())
	for ri := range records {
		rec := make([]string, len(d.cols))
		for ci := range d.cols {
			rec[ci] = d.cols[ci].Cells[ri].Raw
		}
		records[ri] = rec
	}
	return records
}

// Row returns the display form of row i: raw text with missing cells blank.
func (d *Dataset) Row(i int) []string {
	rec := make([]string, len(d.cols))
	for ci := range d.cols {
		cell := d.cols[ci].Cells[i]
		if cell.Missing {
			rec[ci] = ""
		} else {
			rec[ci] = strings.TrimSpace(cell.Raw)
		}
	}
	return rec
}

// missingTokens are the cell values treated as absent, case-insensitively.
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
	"nan":  {},
}

func IsMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

var temporalLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func inferKind(raw []string) Kind {
	sawValue := false
	numeric := true
	temporal := true
	for _, r := range raw {
		if IsMissing(r) {
			continue
		}
		sawValue = true
		v := strings.TrimSpace(r)
		if numeric {
			_, err := strconv.ParseFloat(v, 64)
			numeric = err == nil
		}
		if temporal {
			temporal = parsesAsTime(v)
		}
		if !numeric && !temporal {
			return KindText
		}
	}
	if !sawValue {
		// All-missing columns carry no evidence either way.
		return KindText
	}
	if numeric {
		return KindNumeric
	}
	if temporal {
		return KindTemporal
	}
	return KindText
}

func parsesAsTime(v string) bool {
	for _, layout := range temporalLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
