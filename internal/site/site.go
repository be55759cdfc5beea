// Package site writes the generated documentation pages and the static-site
// configuration file.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"etldocs/internal/faults"
	"etldocs/internal/logging"
)

type Assembler struct {
	log *logging.Logger
	now func() time.Time
}

func NewAssembler(log *logging.Logger) *Assembler {
	return &Assembler{log: log, now: time.Now}
}

// Assemble writes an index page and every entry of files into outputDir,
// overwriting same-named files. Pages are staged in a unique per-invocation
// directory inside outputDir and moved into place with atomic replaces; the
// staging directory is removed on every path.
func (a *Assembler) Assemble(outputDir, siteName, siteDescription string, files map[string]string) error {
	if outputDir == "" {
		return faults.InvalidInput(fmt.Errorf("output directory is required"))
	}
	if siteName == "" {
		return faults.InvalidInput(fmt.Errorf("site name is required"))
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if name == "" || name != filepath.Base(name) {
			return faults.InvalidInput(fmt.Errorf("invalid page file name %q", name))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return faults.IOFailure(fmt.Errorf("create %s: %w", outputDir, err))
	}

	// Staged inside outputDir so the final replace stays on one filesystem.
	staging, err := os.MkdirTemp(outputDir, ".staging-")
	if err != nil {
		return faults.IOFailure(fmt.Errorf("create staging dir: %w", err))
	}
	defer os.RemoveAll(staging)

	pages := map[string]string{"index.md": a.buildIndex(siteName, siteDescription, names)}
	for _, name := range names {
		pages[name] = files[name]
	}

	for name, content := range pages {
		staged := filepath.Join(staging, name)
		if err := os.WriteFile(staged, []byte(content), 0o644); err != nil {
			return faults.IOFailure(fmt.Errorf("stage %s: %w", name, err))
		}
	}
	for name := range pages {
		target := filepath.Join(outputDir, name)
		if err := atomic.ReplaceFile(filepath.Join(staging, name), target); err != nil {
			return faults.IOFailure(fmt.Errorf("write %s: %w", target, err))
		}
		a.log.Debugf("wrote %s", filepath.Join(outputDir, name))
	}
	return nil
}

func (a *Assembler) buildIndex(siteName, siteDescription string, reportNames []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", siteName)
	if siteDescription != "" {
		b.WriteString(siteDescription + "\n\n")
	}

	b.WriteString("## Available Reports\n\n")
	if len(reportNames) == 0 {
		b.WriteString("_no reports generated_\n\n")
	} else {
		for _, name := range reportNames {
			fmt.Fprintf(&b, "- [%s](%s)\n", pageTitle(name), name)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_Last updated: %s_\n", a.now().UTC().Format(time.RFC3339))
	return b.String()
}

// pageTitle turns "data_report.md" into "Data Report".
func pageTitle(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
