package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sammayer/ci-log-processor/pkg/cli"
	"github.com/sammayer/ci-log-processor/pkg/console"
)

// Build-time variables set by GoReleaser
var version = "dev"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:     "ci-log-processor",
	Short:   "Download and analyze GitHub Actions run logs for failure trends",
	Version: version,
	Long: `ci-log-processor downloads the job logs of a workflow's recent runs and
scans them for failure signatures: timeouts, retry exhaustion, test
failures, network errors, and anything else a rule table can name.

Common Tasks:
  ci-log-processor download -r owner/repo -w CI   # Fetch recent run logs
  ci-log-processor report                         # Bucketed failure counts
  ci-log-processor report --tsv > failures.tsv    # Machine-readable output
  ci-log-processor chart                          # Terminal histograms

For detailed help on any command, use:
  ci-log-processor [command] --help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ci-log-processor version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(os.Stderr, "ci-log-processor version %s\n", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output showing detailed information")

	// Help and usage go to stderr so stdout stays parseable.
	rootCmd.SetOut(os.Stderr)

	// Errors are formatted in main; Cobra should not print them twice or
	// dump the usage text after every failure.
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.SetVersionTemplate("ci-log-processor version {{.Version}}\n")

	rootCmd.AddCommand(cli.NewDownloadCommand())
	rootCmd.AddCommand(cli.NewReportCommand())
	rootCmd.AddCommand(cli.NewChartCommand())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
