package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"etldocs/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "etldocs",
	Short: "Run a small ETL pipeline and publish its results as documentation",
	Long: `etldocs extracts a tabular dataset, transforms it, loads the result,
and can deploy a generated data report as a static documentation site.

Examples:
	# Show available commands and global flags
	etldocs --help

	# Run the pipeline
	etldocs run --source data.csv --output out/clean.csv

	# Run and deploy documentation
	etldocs run --source data.csv --output out/clean.csv --deploy --project-name "Sales"

	# Print build info
	etldocs version

Output:
	By default, commands write human-readable output to stdout.
	The run command supports structured output via emitter flags (see its --help).`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints per-step diagnostics and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
