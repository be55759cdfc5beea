// Package report renders a dataset and a pipeline summary into a Markdown
// document. Rendering is pure: file placement is the site assembler's job.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"etldocs/internal/dataset"
	"etldocs/internal/faults"
	"etldocs/internal/logging"
)

const (
	// DefaultPreviewRows is how many data rows the preview table shows.
	DefaultPreviewRows = 10

	sentinel = "_no data available_"
)

type Generator struct {
	log         *logging.Logger
	PreviewRows int
	now         func() time.Time
}

func NewGenerator(log *logging.Logger) *Generator {
	return &Generator{
		log:         log,
		PreviewRows: DefaultPreviewRows,
		now:         time.Now,
	}
}

// Render produces the Markdown report for a dataset and a free-form summary
// mapping. The summary is opaque: it is rendered as-is with sorted keys.
func (g *Generator) Render(ds *dataset.Dataset, summary map[string]any, title string) (string, error) {
	if ds == nil {
		return "", faults.InvalidInput(fmt.Errorf("nil dataset"))
	}
	if title == "" {
		title = "Data Report"
	}

	g.log.Debugf("rendering report %q: %d rows, %d columns", title, ds.Rows(), ds.ColumnCount())

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated: %s_\n\n", g.now().UTC().Format(time.RFC3339))

	g.writeOverview(&b, ds)
	g.writeColumns(&b, ds)
	g.writeNumericSummary(&b, ds)
	g.writePreview(&b, ds)
	g.writeRunSummary(&b, summary)

	return b.String(), nil
}

func (g *Generator) writeOverview(b *strings.Builder, ds *dataset.Dataset) {
	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | ---: |\n")
	fmt.Fprintf(b, "| Rows | %s |\n", humanize.Comma(int64(ds.Rows())))
	fmt.Fprintf(b, "| Columns | %s |\n", humanize.Comma(int64(ds.ColumnCount())))
	b.WriteString("\n")
}

func (g *Generator) writeColumns(b *strings.Builder, ds *dataset.Dataset) {
	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Missing | Missing % |\n")
	b.WriteString("| --- | --- | ---: | ---: |\n")
	for _, c := range ds.Columns() {
		fmt.Fprintf(b, "| %s | %s | %d | %.1f%% |\n",
			cellText(c.Name), c.Kind, c.MissingCount(), c.MissingPercent())
	}
	b.WriteString("\n")
}

func (g *Generator) writeNumericSummary(b *strings.Builder, ds *dataset.Dataset) {
	var names []string
	var summaries []dataset.NumericSummary
	for _, c := range ds.Columns() {
		if s, ok := dataset.Describe(c); ok {
			names = append(names, c.Name)
			summaries = append(summaries, s)
		}
	}
	if len(names) == 0 {
		return
	}

	b.WriteString("## Numeric Summary\n\n")
	b.WriteString("| Statistic |")
	for _, n := range names {
		fmt.Fprintf(b, " %s |", cellText(n))
	}
	b.WriteString("\n| --- |")
	for range names {
		b.WriteString(" ---: |")
	}
	b.WriteString("\n")

	rows := []struct {
		label string
		value func(dataset.NumericSummary) string
	}{
		{"count", func(s dataset.NumericSummary) string { return strconv.Itoa(s.Count) }},
		{"mean", func(s dataset.NumericSummary) string { return formatStat(s.Mean) }},
		{"std", func(s dataset.NumericSummary) string { return formatStat(s.Std) }},
		{"min", func(s dataset.NumericSummary) string { return formatStat(s.Min) }},
		{"25%", func(s dataset.NumericSummary) string { return formatStat(s.P25) }},
		{"50%", func(s dataset.NumericSummary) string { return formatStat(s.Median) }},
		{"75%", func(s dataset.NumericSummary) string { return formatStat(s.P75) }},
		{"max", func(s dataset.NumericSummary) string { return formatStat(s.Max) }},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s |", row.label)
		for _, s := range summaries {
			fmt.Fprintf(b, " %s |", row.value(s))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (g *Generator) writePreview(b *strings.Builder, ds *dataset.Dataset) {
	b.WriteString("## Preview\n\n")
	if ds.Rows() == 0 {
		b.WriteString(sentinel + "\n\n")
		return
	}

	n := g.PreviewRows
	if n <= 0 {
		n = DefaultPreviewRows
	}
	if ds.Rows() < n {
		n = ds.Rows()
	}

	b.WriteString("| # |")
	for _, name := range ds.Header() {
		fmt.Fprintf(b, " %s |", cellText(name))
	}
	b.WriteString("\n| ---: |")
	for range ds.Header() {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "| %d |", i+1)
		for _, cell := range ds.Row(i) {
			fmt.Fprintf(b, " %s |", cellText(cell))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (g *Generator) writeRunSummary(b *strings.Builder, summary map[string]any) {
	b.WriteString("## Pipeline Summary\n\n")
	if len(summary) == 0 {
		b.WriteString("- none\n")
		return
	}
	writeSummaryMap(b, summary, 0)
}

func writeSummaryMap(b *strings.Builder, m map[string]any, depth int) {
	indent := strings.Repeat("  ", depth)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			fmt.Fprintf(b, "%s- **%s**:\n", indent, cellText(k))
			writeSummaryMap(b, v, depth+1)
		case []string:
			fmt.Fprintf(b, "%s- **%s**:\n", indent, cellText(k))
			for _, item := range v {
				fmt.Fprintf(b, "%s  - %s\n", indent, cellText(item))
			}
		case []any:
			fmt.Fprintf(b, "%s- **%s**:\n", indent, cellText(k))
			for _, item := range v {
				fmt.Fprintf(b, "%s  - %s\n", indent, cellText(fmt.Sprintf("%v", item)))
			}
		default:
			fmt.Fprintf(b, "%s- **%s**: %s\n", indent, cellText(k), cellText(fmt.Sprintf("%v", v)))
		}
	}
}

func formatStat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// cellText makes a value safe inside a Markdown table cell.
func cellText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
