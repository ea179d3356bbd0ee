// This file implements the chart command: terminal histograms of the
// aggregated failure data, optionally written to a file as plain text.

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
	"github.com/sammayer/ci-log-processor/pkg/console"
)

// NewChartCommand creates the chart command.
func NewChartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart [path]...",
		Short: "Render failure histograms from downloaded run logs",
		Long: `Render two histograms from the scanned run logs: failures over time as a
stacked bar per bucket, and failures by job with mean and median markers.

Paths are interpreted as for the report command. With --output the charts
are written to a file as plain text without color.

Examples:
  ci-log-processor chart
  ci-log-processor chart ./ci-logs --bucket 6h
  ci-log-processor chart --width 80 -o failures.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, _ := cmd.Flags().GetDuration("bucket")
			rulesPath, _ := cmd.Flags().GetString("rules")
			width, _ := cmd.Flags().GetInt("width")
			outputPath, _ := cmd.Flags().GetString("output")

			if width < 10 || width > 200 {
				return fmt.Errorf("width must be between 10 and 200, got %d", width)
			}

			paths := args
			if len(paths) == 0 {
				paths = []string{"logs"}
			}

			rules := cilog.DefaultRules()
			if rulesPath != "" {
				loaded, err := cilog.LoadRules(rulesPath)
				if err != nil {
					return err
				}
				rules = loaded
			}

			report, err := BuildReport(paths, rules, bucket)
			if err != nil {
				return err
			}
			for _, warning := range report.Warnings {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(warning))
			}
			if len(report.Records) == 0 {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("No failure signatures found across %d runs", report.Runs)))
				return nil
			}

			color := outputPath == "" && console.IsStdoutTerminal()
			charts := BuildTimeChart(report.Buckets, bucket, width, color) +
				"\n" +
				BuildJobChart(report.Jobs, width, color)

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(charts), 0644); err != nil {
					return fmt.Errorf("failed to write chart file: %w", err)
				}
				fmt.Fprintln(os.Stderr, console.FormatLocationMessage(outputPath))
				return nil
			}
			fmt.Println(charts)
			return nil
		},
	}

	cmd.Flags().Duration("bucket", 24*time.Hour, "Time bucket width (e.g. 1h, 6h, 24h)")
	cmd.Flags().String("rules", "", "YAML file with an ordered category/pattern rule table")
	cmd.Flags().Int("width", 60, "Maximum bar width in characters")
	cmd.Flags().StringP("output", "o", "", "Write charts to this file instead of stdout")

	return cmd
}
