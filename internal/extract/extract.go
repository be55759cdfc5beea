// Package extract reads tabular source files into a dataset.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"etldocs/internal/dataset"
	"etldocs/internal/faults"
)

const (
	TypeCSV  = "csv"
	TypeJSON = "json"
	TypeXLSX = "xlsx"
	TypeAuto = "auto"
)

// FromSource reads the file at path as the given source type ("auto" infers
// the type from the file extension) and returns the parsed dataset.
func FromSource(path, sourceType string) (*dataset.Dataset, error) {
	st, err := resolveType(path, sourceType)
	if err != nil {
		return nil, err
	}

	var (
		header  []string
		records [][]string
	)
	switch st {
	case TypeCSV:
		header, records, err = readCSV(path)
	case TypeJSON:
		header, records, err = readJSON(path)
	case TypeXLSX:
		header, records, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}

	ds, err := dataset.FromRecords(header, records)
	if err != nil {
		return nil, faults.InvalidInput(fmt.Errorf("source %s: %w", path, err))
	}
	return ds, nil
}

func resolveType(path, sourceType string) (string, error) {
	st := strings.ToLower(strings.TrimSpace(sourceType))
	switch st {
	case TypeCSV, TypeJSON, TypeXLSX:
		return st, nil
	case "", TypeAuto:
	default:
		return "", faults.InvalidInput(fmt.Errorf("unsupported source type: %s", sourceType))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return TypeCSV, nil
	case ".json":
		return TypeJSON, nil
	case ".xlsx":
		return TypeXLSX, nil
	default:
		return "", faults.InvalidInput(fmt.Errorf("cannot infer source type from extension of %q; use --source-type", path))
	}
}
