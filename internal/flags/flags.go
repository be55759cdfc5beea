package flags

// Package flags defines canonical CLI flag names shared across the CLI.
// Keeping these as constants avoids drift between Cobra flag wiring and
// other code paths that reference flags (help text, tests).
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Source / output
	FlagSource       = "source"
	FlagSourceType   = "source-type"
	FlagOutput       = "output"
	FlagOutputFormat = "output-format"
	FlagSummary      = "summary"

	// Transform
	FlagNoTransform = "no-transform"
	FlagFilter      = "filter"

	// Deploy
	FlagDeploy          = "deploy"
	FlagProjectName     = "project-name"
	FlagSiteName        = "site-name"
	FlagSiteDescription = "site-description"
	FlagDocsDir         = "docs-dir"
	FlagSiteConfig      = "site-config"
	FlagRepo            = "repo"
	FlagPreviewRows     = "preview-rows"

	// Event sinks
	FlagConsoleFormat = "console-format"
	FlagEmit          = "emit"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagVerbose = "verbose"
)
