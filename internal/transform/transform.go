// Package transform applies the pipeline's cleanup steps to a dataset and
// records a human-readable list of what was applied.
package transform

import (
	"fmt"
	"strings"

	"etldocs/internal/dataset"
	"etldocs/internal/faults"
)

// Condition keeps rows whose cell in Column equals Value after trimming.
type Condition struct {
	Column string
	Value  string
}

// Result is a transformed dataset plus the ordered descriptions of the
// steps that were applied to it.
type Result struct {
	Dataset *dataset.Dataset
	Applied []string
}

// Apply runs the standard transform sequence: column-name normalization,
// cell cleanup (trim + drop all-missing rows), then any row filters.
func Apply(ds *dataset.Dataset, conditions []Condition) (*Result, error) {
	if ds == nil {
		return nil, faults.InvalidInput(fmt.Errorf("nil dataset"))
	}

	res := &Result{}

	header := normalizeHeader(ds.Header())
	res.Applied = append(res.Applied, "normalized column names")

	records, dropped := cleanRecords(ds.Records())
	res.Applied = append(res.Applied, "trimmed cell whitespace")
	if dropped > 0 {
		res.Applied = append(res.Applied, fmt.Sprintf("dropped %d empty rows", dropped))
	}

	for _, cond := range conditions {
		var kept int
		records, kept = filterRecords(header, records, cond)
		if kept < 0 {
			return nil, faults.InvalidInput(fmt.Errorf("filter references unknown column %q", cond.Column))
		}
		res.Applied = append(res.Applied, fmt.Sprintf("filtered %s=%s (%d rows kept)", cond.Column, cond.Value, kept))
	}

	out, err := dataset.FromRecords(header, records)
	if err != nil {
		return nil, faults.InvalidInput(err)
	}
	res.Dataset = out
	return res, nil
}

// NormalizeName lowercases a column name and collapses non-alphanumeric
// runs into single underscores.
func NormalizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true // suppress a leading underscore
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = NormalizeName(name)
	}
	return out
}

func cleanRecords(records [][]string) ([][]string, int) {
	var out [][]string
	dropped := 0
	for _, rec := range records {
		trimmed := make([]string, len(rec))
		empty := true
		for i, cell := range rec {
			trimmed[i] = strings.TrimSpace(cell)
			if !dataset.IsMissing(trimmed[i]) {
				empty = false
			}
		}
		if empty {
			dropped++
			continue
		}
		out = append(out, trimmed)
	}
	return out, dropped
}

// filterRecords returns the matching records and their count, or -1 when the
// condition references a column that is not in the header.
func filterRecords(header []string, records [][]string, cond Condition) ([][]string, int) {
	ci := -1
	for i, name := range header {
		if name == cond.Column {
			ci = i
			break
		}
	}
	if ci < 0 {
		return records, -1
	}

	want := strings.TrimSpace(cond.Value)
	var out [][]string
	for _, rec := range records {
		if strings.TrimSpace(rec[ci]) == want {
			out = append(out, rec)
		}
	}
	return out, len(out)
}
