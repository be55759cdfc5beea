package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep the CLI
	// flags in internal/cli/run.go in sync.
	Source    Source
	Output    Output
	Transform Transform
	Deploy    Deploy
	Sinks     Sinks
	Runtime   Runtime
}

type Source struct {
	// Path is the source data file (see --source).
	Path string

	// Type is the source format (see --source-type).
	// Allowed values: csv, json, xlsx, auto (inferred from extension).
	Type string
}

type Output struct {
	// Path is the destination data file (see --output).
	Path string

	// Format is the destination format (see --output-format).
	// Allowed values: csv, json, auto (inferred from extension).
	Format string

	// SummaryPath overrides where the data summary JSON is written
	// (see --summary). Empty derives "<output>_summary.json".
	SummaryPath string
}

type Transform struct {
	// Disable skips the transform phase entirely (see --no-transform).
	Disable bool

	// Filter holds row filters as column=value (repeatable; comma-separated
	// accepted; see --filter).
	Filter []string
}

type Deploy struct {
	// Enable triggers report rendering and site assembly (see --deploy).
	Enable bool

	// ProjectName titles the rendered report (see --project-name).
	ProjectName string

	// SiteName is the documentation site name (see --site-name).
	// Empty derives "<project name> Documentation".
	SiteName string

	// SiteDescription is the documentation site description (see --site-description).
	SiteDescription string

	// DocsDir is the directory documentation pages are written to (see --docs-dir).
	DocsDir string

	// ConfigPath is where the site configuration file is written
	// (see --site-config). The reference tooling expects it next to the
	// docs dir, but placement is deliberately configurable.
	ConfigPath string

	// Repo is the OWNER/REPO the site URLs are derived from (see --repo).
	// Accepts a plain OWNER/REPO or a github.com URL.
	Repo string

	// PreviewRows is how many data rows the report preview shows
	// (see --preview-rows).
	PreviewRows int
}

type Sinks struct {
	// ConsoleFormat controls the human-facing console sink (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// Out writes structured events to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, inferred from the extension.
	OutFormat string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Verbose enables debug logging (see --verbose).
	Verbose bool
}

// FilterCondition is one parsed --filter entry.
type FilterCondition struct {
	Column string
	Value  string
}

func New() *Config {
	return &Config{
		Source: Source{Type: "auto"},
		Output: Output{Format: "auto"},
		Deploy: Deploy{
			DocsDir:     "docs",
			ConfigPath:  "mkdocs.yml",
			PreviewRows: 10,
		},
		Sinks: Sinks{ConsoleFormat: "text"},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Transform.Filter = splitCommaList(c.Transform.Filter)
	c.Sinks.Emit = splitCommaList(c.Sinks.Emit)

	if strings.TrimSpace(c.Source.Path) == "" {
		return errors.New("--source is required")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("--output is required")
	}

	c.Source.Type = normalizeEnumValue(c.Source.Type)
	if c.Source.Type == "" {
		c.Source.Type = "auto"
	}
	switch c.Source.Type {
	case "csv", "json", "xlsx", "auto":
	default:
		return fmt.Errorf("unsupported --source-type: %s (must be one of: csv, json, xlsx, auto)", c.Source.Type)
	}

	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = "auto"
	}
	switch c.Output.Format {
	case "csv", "json", "auto":
	default:
		return fmt.Errorf("unsupported --output-format: %s (must be one of: csv, json, auto)", c.Output.Format)
	}

	if _, err := ParseFilterConditions(c.Transform.Filter); err != nil {
		return err
	}

	// Deploy validation
	if c.Deploy.PreviewRows <= 0 {
		return errors.New("--preview-rows must be >= 1")
	}
	if c.Deploy.Enable {
		if strings.TrimSpace(c.Deploy.DocsDir) == "" {
			return errors.New("--docs-dir must not be empty")
		}
		if strings.TrimSpace(c.Deploy.ConfigPath) == "" {
			return errors.New("--site-config must not be empty")
		}
	}
	if c.Deploy.Repo != "" {
		repo, err := normalizeRepoSelector(c.Deploy.Repo)
		if err != nil {
			return fmt.Errorf("invalid --repo value: %w", err)
		}
		c.Deploy.Repo = repo
	}

	// Sink validation
	c.Sinks.ConsoleFormat = normalizeEnumValue(c.Sinks.ConsoleFormat)
	if c.Sinks.ConsoleFormat == "" {
		c.Sinks.ConsoleFormat = "text"
	}
	if c.Sinks.ConsoleFormat != "text" && c.Sinks.ConsoleFormat != "json" && c.Sinks.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Sinks.ConsoleFormat)
	}
	for _, emit := range c.Sinks.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Sinks.Out != "" {
		c.Sinks.OutFormat = normalizeEnumValue(c.Sinks.OutFormat)
		if c.Sinks.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Sinks.Out))
			switch ext {
			case ".json":
				c.Sinks.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Sinks.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer event output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer event output format from file extension %q; use --out-format", ext)
			}
		} else if c.Sinks.OutFormat != "json" && c.Sinks.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported --out-format: %s", c.Sinks.OutFormat)
		}
	}

	return nil
}

// ParseFilterConditions parses values of the form "column=value".
//
// Notes:
// - Entries may be provided via repeated flags and/or comma-delimited lists.
// - Column names are matched after transform normalization, so filters use
//   the normalized (lowercase underscore) names.
// - Empty values are allowed ("column=") and match missing cells.
func ParseFilterConditions(values []string) ([]FilterCondition, error) {
	var out []FilterCondition
	for _, raw := range splitCommaList(values) {
		column, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --filter entry %q: expected column=value", raw)
		}
		column = strings.TrimSpace(column)
		if column == "" {
			return nil, fmt.Errorf("invalid --filter entry %q: expected non-empty column", raw)
		}
		out = append(out, FilterCondition{Column: column, Value: strings.TrimSpace(value)})
	}
	return out, nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeRepoSelector(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	// Accept a raw OWNER/REPO, or a GitHub URL like:
	//   https://github.com/<owner>/<repo>
	//   github.com/<owner>/<repo>
	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return "", fmt.Errorf("%q", raw)
		}
		parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
		if len(parts) < 2 {
			return "", fmt.Errorf("%q", raw)
		}
		return parts[0] + "/" + strings.TrimSuffix(parts[1], ".git"), nil
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%q (expected OWNER/REPO)", raw)
	}
	return raw, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
