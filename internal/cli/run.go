package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"etldocs/internal/config"
	"etldocs/internal/flags"
	"etldocs/internal/logging"
	"etldocs/internal/pipeline"
)

var cfg = config.New()

const runHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Exit codes:
	0 = pipeline completed (and deploy, when requested)
	1 = pipeline failed during extract, transform, or load
	2 = deploy failed (data outputs were written and kept)
	3 = invalid invocation

Examples:
	# CSV in, CSV out
	etldocs run --source data.csv --output out/clean.csv

	# Filter rows and write JSON
	etldocs run --source data.csv --output out/clean.json --filter status=active

	# Deploy documentation with derived GitHub Pages URLs
	etldocs run --source data.csv --output out/clean.csv \
		--deploy --project-name "Sales" --repo acme/sales-data

	# AI agent: stream machine-readable events to stdout
	etldocs run --source data.csv --output out/clean.csv --no-console --emit ndjson
`

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL pipeline once",
	Long: `Run the ETL pipeline: extract a tabular source, transform it, load the
result, and optionally deploy a generated data report as documentation.

Phases:
	extract    read the source file (csv, json, or xlsx) into a dataset
	transform  normalize column names, clean cells, apply row filters
	load       write the dataset plus a *_summary.json metadata file
	deploy     (--deploy) render data_report.md, assemble the docs directory,
	           and write the site configuration file

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, phase.result, run.finished).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		log := logging.New(os.Stderr, cfg.Runtime.Verbose)

		outMgr, err := pipeline.SetupSinks(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to set up output sinks: %v\n", err)
			os.Exit(3)
		}

		code := pipeline.New(cfg, log, outMgr).Run()
		if err := outMgr.Close(); err != nil {
			log.Errorf("failed to close output sinks: %v", err)
			if code == 0 {
				code = 1
			}
		}
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.SetHelpTemplate(runHelpTemplate)

	// Source / output
	runCmd.Flags().StringVar(&cfg.Source.Path, flags.FlagSource, "", "Path to the source data file (required)")
	runCmd.Flags().StringVar(&cfg.Source.Type, flags.FlagSourceType, "auto", "Source format: csv|json|xlsx|auto (default: auto, inferred from extension)")
	runCmd.Flags().StringVar(&cfg.Output.Path, flags.FlagOutput, "", "Path for the output data file (required)")
	runCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagOutputFormat, "auto", "Output format: csv|json|auto (default: auto, inferred from extension)")
	runCmd.Flags().StringVar(&cfg.Output.SummaryPath, flags.FlagSummary, "", "Path for the data summary JSON (default: <output>_summary.json)")

	// Transform
	runCmd.Flags().BoolVar(&cfg.Transform.Disable, flags.FlagNoTransform, false, "Skip the transform phase")
	runCmd.Flags().StringSliceVar(&cfg.Transform.Filter, flags.FlagFilter, nil, "Row filter as column=value (repeatable; comma-separated accepted; uses normalized column names)")

	// Deploy
	runCmd.Flags().BoolVar(&cfg.Deploy.Enable, flags.FlagDeploy, false, "Deploy results as a documentation site after a successful load")
	runCmd.Flags().StringVar(&cfg.Deploy.ProjectName, flags.FlagProjectName, "", "Project name used as the report title (default: \"ETL Results\")")
	runCmd.Flags().StringVar(&cfg.Deploy.SiteName, flags.FlagSiteName, "", "Documentation site name (default: \"<project name> Documentation\")")
	runCmd.Flags().StringVar(&cfg.Deploy.SiteDescription, flags.FlagSiteDescription, "", "Documentation site description")
	runCmd.Flags().StringVar(&cfg.Deploy.DocsDir, flags.FlagDocsDir, "docs", "Directory documentation pages are written to")
	runCmd.Flags().StringVar(&cfg.Deploy.ConfigPath, flags.FlagSiteConfig, "mkdocs.yml", "Path the site configuration file is written to")
	runCmd.Flags().StringVar(&cfg.Deploy.Repo, flags.FlagRepo, "", "Repository as OWNER/REPO (or GitHub URL); derives site_url and repo_url")
	runCmd.Flags().IntVar(&cfg.Deploy.PreviewRows, flags.FlagPreviewRows, 10, "Data rows shown in the report preview table")

	// Event sinks
	runCmd.Flags().StringVar(&cfg.Sinks.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	runCmd.Flags().StringSliceVar(&cfg.Sinks.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	runCmd.Flags().StringVar(&cfg.Sinks.Out, flags.FlagOut, "", "Write structured events to this path")
	runCmd.Flags().StringVar(&cfg.Sinks.OutFormat, flags.FlagOutFormat, "", "Structured event format for --out: json|ndjson (default: inferred from file extension)")
	runCmd.Flags().BoolVar(&cfg.Sinks.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out)")
}
