// Package load persists a dataset and its summary metadata. All writes are
// whole-file atomic overwrites so a failed run never leaves partial output.
package load

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"etldocs/internal/dataset"
	"etldocs/internal/faults"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatAuto = "auto"
)

// Save writes the dataset to path as CSV or JSON ("auto" infers the format
// from the file extension).
func Save(ds *dataset.Dataset, path, format string) error {
	if ds == nil {
		return faults.InvalidInput(fmt.Errorf("nil dataset"))
	}
	f, err := resolveFormat(path, format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch f {
	case FormatCSV:
		err = encodeCSV(&buf, ds)
	case FormatJSON:
		err = encodeJSON(&buf, ds)
	}
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return faults.IOFailure(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

// SummaryPath derives the summary file path for an output path, replacing
// its extension with "_summary.json".
func SummaryPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_summary.json"
}

type columnSummary struct {
	Name    string       `json:"name"`
	Kind    dataset.Kind `json:"kind"`
	Missing int          `json:"missing"`
}

type dataSummary struct {
	GeneratedAt string          `json:"generated_at"`
	RunID       string          `json:"run_id,omitempty"`
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	Detail      []columnSummary `json:"column_detail"`
}

// WriteSummary writes the dataset's descriptive metadata as JSON.
func WriteSummary(ds *dataset.Dataset, path, runID string) error {
	if ds == nil {
		return faults.InvalidInput(fmt.Errorf("nil dataset"))
	}

	s := dataSummary{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:       runID,
		Rows:        ds.Rows(),
		Columns:     ds.ColumnCount(),
		Detail:      make([]columnSummary, 0, ds.ColumnCount()),
	}
	for _, c := range ds.Columns() {
		s.Detail = append(s.Detail, columnSummary{Name: c.Name, Kind: c.Kind, Missing: c.MissingCount()})
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return faults.TemplateFailure(err)
	}
	b = append(b, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return faults.IOFailure(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

func resolveFormat(path, format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case FormatCSV, FormatJSON:
		return f, nil
	case "", FormatAuto:
	default:
		return "", faults.InvalidInput(fmt.Errorf("unsupported output format: %s", format))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", faults.InvalidInput(fmt.Errorf("cannot infer output format from extension of %q; use --output-format", path))
	}
}

func encodeCSV(buf *bytes.Buffer, ds *dataset.Dataset) error {
	w := csv.NewWriter(buf)
	if err := w.Write(ds.Header()); err != nil {
		return faults.TemplateFailure(err)
	}
	for _, rec := range ds.Records() {
		if err := w.Write(rec); err != nil {
			return faults.TemplateFailure(err)
		}
	}
	w.Flush()
	return faults.TemplateFailure(w.Error())
}

// encodeJSON writes an array of row objects by hand to keep the column
// order of the dataset (encoding/json would alphabetize map keys).
func encodeJSON(buf *bytes.Buffer, ds *dataset.Dataset) error {
	cols := ds.Columns()
	buf.WriteString("[")
	for ri := 0; ri < ds.Rows(); ri++ {
		if ri > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for ci := range cols {
			if ci > 0 {
				buf.WriteString(", ")
			}
			name, err := json.Marshal(cols[ci].Name)
			if err != nil {
				return faults.TemplateFailure(err)
			}
			buf.Write(name)
			buf.WriteString(": ")
			buf.Write(jsonCellValue(cols[ci], cols[ci].Cells[ri]))
		}
		buf.WriteString("}")
	}
	if ds.Rows() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return nil
}

func jsonCellValue(c dataset.Column, cell dataset.Cell) []byte {
	if cell.Missing {
		return []byte("null")
	}
	if c.Kind == dataset.KindNumeric {
		b, err := json.Marshal(cell.Number)
		if err == nil {
			return b
		}
	}
	b, err := json.Marshal(strings.TrimSpace(cell.Raw))
	if err != nil {
		return []byte("null")
	}
	return b
}
