// This file implements the report command: scan downloaded run directories
// for failure signatures and print time-bucketed per-category counts as a
// table, JSON, or TSV.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
	"github.com/sammayer/ci-log-processor/pkg/console"
	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var reportLog = logger.New("cli:report")

// Report is the aggregated outcome of scanning a set of run directories.
type Report struct {
	Runs     int
	Records  []cilog.FailureRecord
	Buckets  []cilog.Bucket
	Jobs     []cilog.JobCount
	Warnings []string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [path]...",
		Short: "Aggregate failure signatures from downloaded run logs",
		Long: `Scan downloaded run logs for failure signatures and report per-category
counts in fixed-width time buckets.

Paths may be run-<id> directories, directories containing them, or globs.
With no path, the default download directory 'logs' is scanned.

The built-in signature table covers timeouts, retry exhaustion, test
failures, assertion and network errors, and OOM kills; --rules replaces it
with an ordered YAML table of category/pattern pairs.

Examples:
  ci-log-processor report
  ci-log-processor report ./ci-logs --bucket 6h
  ci-log-processor report 'archive/run-*' --rules team-rules.yml
  ci-log-processor report --json | jq '.totals'
  ci-log-processor report --tsv > failures.tsv`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, _ := cmd.Flags().GetDuration("bucket")
			rulesPath, _ := cmd.Flags().GetString("rules")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			tsvOutput, _ := cmd.Flags().GetBool("tsv")
			verbose, _ := cmd.Flags().GetBool("verbose")

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
				if verbose {
					fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Loaded %d rules from %s", len(rules.Rules()), rulesPath)))
				}
			}

			report, err := BuildReport(paths, rules, bucket)
			if err != nil {
				return err
			}
			for _, warning := range report.Warnings {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(warning))
			}

			switch {
			case jsonOutput:
				return writeReportJSON(os.Stdout, report)
			case tsvOutput:
				return cilog.WriteTSV(os.Stdout, report.Buckets)
			default:
				renderReport(report, bucket)
				return nil
			}
		},
	}

	cmd.Flags().Duration("bucket", 24*time.Hour, "Time bucket width (e.g. 1h, 6h, 24h)")
	cmd.Flags().String("rules", "", "YAML file with an ordered category/pattern rule table")
	cmd.Flags().BoolP("json", "j", false, "Output the report as JSON")
	cmd.Flags().Bool("tsv", false, "Output bucket counts as tab-separated values")
	cmd.MarkFlagsMutuallyExclusive("json", "tsv")

	return cmd
}

// BuildReport discovers runs under the given paths, scans their job logs
// with the rule table, and aggregates the findings into buckets.
func BuildReport(paths []string, rules *cilog.RuleSet, bucket time.Duration) (Report, error) {
	reportLog.Printf("Building report: paths=%v, bucket=%s", paths, bucket)

	runs, err := cilog.DiscoverRuns(paths)
	if err != nil {
		return Report{}, err
	}

	report := Report{Runs: len(runs)}
	report.Records = cilog.CollectRecords(runs, rules, func(path string, err error) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Skipping unreadable log %s: %v", path, err))
	})

	report.Buckets, err = cilog.Aggregate(report.Records, bucket)
	if err != nil {
		return Report{}, err
	}
	report.Jobs = cilog.CountByJob(report.Records)

	reportLog.Printf("Report built: runs=%d, records=%d, buckets=%d", report.Runs, len(report.Records), len(report.Buckets))
	return report, nil
}

// reportJSON is the stable JSON shape of a report.
type reportJSON struct {
	Runs     int              `json:"runs"`
	Failures int              `json:"failures"`
	Totals   map[string]int   `json:"totals"`
	Buckets  []bucketJSON     `json:"buckets"`
	Jobs     []cilog.JobCount `json:"jobs"`
}

type bucketJSON struct {
	Start  time.Time      `json:"start"`
	Counts map[string]int `json:"counts"`
}

func writeReportJSON(w io.Writer, report Report) error {
	out := reportJSON{
		Runs:     report.Runs,
		Failures: len(report.Records),
		Totals:   cilog.CategoryTotals(report.Buckets),
		Buckets:  make([]bucketJSON, 0, len(report.Buckets)),
		Jobs:     report.Jobs,
	}
	for _, b := range report.Buckets {
		out.Buckets = append(out.Buckets, bucketJSON{Start: b.Start, Counts: b.Counts})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// renderReport prints the bucket table and the per-job table to stdout.
func renderReport(report Report, bucket time.Duration) {
	if len(report.Records) == 0 {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("No failure signatures found across %d runs", report.Runs)))
		return
	}

	categories := cilog.Categories(report.Records)

	headers := append([]string{"Bucket"}, categories...)
	rows := make([][]string, 0, len(report.Buckets))
	for _, b := range report.Buckets {
		row := []string{formatBucketStart(b.Start, bucket)}
		for _, cat := range categories {
			row = append(row, strconv.Itoa(b.Counts[cat]))
		}
		rows = append(rows, row)
	}

	totals := cilog.CategoryTotals(report.Buckets)
	totalRow := []string{"Total"}
	for _, cat := range categories {
		totalRow = append(totalRow, strconv.Itoa(totals[cat]))
	}

	fmt.Println(console.RenderTable(console.TableConfig{
		Title:     fmt.Sprintf("Failures per %s (%d runs)", bucket, report.Runs),
		Headers:   headers,
		Rows:      rows,
		ShowTotal: true,
		TotalRow:  totalRow,
	}))

	jobRows := make([][]string, 0, len(report.Jobs))
	for _, jc := range report.Jobs {
		jobRows = append(jobRows, []string{jc.JobName, strconv.Itoa(jc.Total), formatJobCategories(jc)})
	}
	fmt.Println(console.RenderTable(console.TableConfig{
		Title:   "Failures by Job",
		Headers: []string{"Job", "Failures", "Categories"},
		Rows:    jobRows,
	}))
}

// formatBucketStart drops the time component for day-aligned buckets to keep
// the table narrow.
func formatBucketStart(start time.Time, bucket time.Duration) string {
	if bucket%(24*time.Hour) == 0 {
		return start.Format("2006-01-02")
	}
	return start.Format("2006-01-02 15:04")
}

func formatJobCategories(jc cilog.JobCount) string {
	categories := make([]string, 0, len(jc.Counts))
	for cat := range jc.Counts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	out := ""
	for i, cat := range categories {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d", cat, jc.Counts[cat])
	}
	return out
}
