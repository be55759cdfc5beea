package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"etldocs/internal/faults"
)

// readJSON reads an array of flat objects. Columns are the union of the
// object keys, sorted for determinism; absent keys become missing cells.
func readJSON(path string) ([]string, [][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, faults.IOFailure(err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, nil, faults.InvalidInput(fmt.Errorf("parse %s: expected an array of objects: %w", path, err))
	}

	seen := make(map[string]struct{})
	var header []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)
	if len(header) == 0 {
		return nil, nil, faults.InvalidInput(fmt.Errorf("source %s has no columns", path))
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(header))
		for ci, name := range header {
			v, ok := row[name]
			if !ok {
				continue
			}
			rec[ci] = jsonCellText(v)
		}
		records[i] = rec
	}
	return header, records, nil
}

func jsonCellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		// Nested structures are kept as their JSON text.
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
