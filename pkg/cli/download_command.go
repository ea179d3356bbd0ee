//go:build !js && !wasm

// This file implements the download command: it resolves the monitored
// workflow, lists its recent runs, and pulls every job's raw log into a
// run-<id> directory tree that the report and chart commands consume.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
	"github.com/sammayer/ci-log-processor/pkg/console"
	"github.com/sammayer/ci-log-processor/pkg/envutil"
	"github.com/sammayer/ci-log-processor/pkg/fileutil"
	"github.com/sammayer/ci-log-processor/pkg/logger"
	"github.com/sammayer/ci-log-processor/pkg/timeutil"
)

var downloadLog = logger.New("cli:download")

// MaxConcurrentDownloads is the default bound on parallel run downloads.
const MaxConcurrentDownloads = 5

// jobNameSanitizer collapses characters that are unsafe in filenames.
var jobNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DownloadOptions carries the resolved flags of the download command.
type DownloadOptions struct {
	Repo      string
	Workflow  string
	StartDate string
	OutputDir string
	PageSize  int
	Archive   bool
	Verbose   bool
}

// DownloadResult is the outcome of downloading one run.
type DownloadResult struct {
	Run      WorkflowRun
	Dir      string
	Jobs     int
	Duration time.Duration
	Cached   bool
	Error    error
}

// NewDownloadCommand creates the download command.
func NewDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download job logs of recent workflow runs",
		Long: `Download the raw job logs of recent runs of a workflow.

Each run is written to <output>/run-<run-id>/ with one <job-id>-<job-name>.log
file per job and a run.json metadata file. Runs already on disk are skipped,
so repeated invocations only fetch what is new.

Examples:
  ci-log-processor download -r owner/repo -w CI
  ci-log-processor download -r owner/repo -w ci.yml -d 30
  ci-log-processor download -r owner/repo -w CI --start-date -2w -o ./ci-logs
  ci-log-processor download -r owner/repo -w CI --archive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _ := cmd.Flags().GetString("repo")
			workflowName, _ := cmd.Flags().GetString("workflow")
			days, _ := cmd.Flags().GetInt("days")
			startDate, _ := cmd.Flags().GetString("start-date")
			outputDir, _ := cmd.Flags().GetString("output")
			pageSize, _ := cmd.Flags().GetInt("page-size")
			archive, _ := cmd.Flags().GetBool("archive")
			verbose, _ := cmd.Flags().GetBool("verbose")

			now := time.Now()
			if startDate != "" {
				resolved, err := timeutil.ResolveRelativeDate(startDate, now)
				if err != nil {
					return fmt.Errorf("invalid start-date format '%s': %w", startDate, err)
				}
				startDate = resolved
			} else {
				startDate = now.AddDate(0, 0, -days).Format("2006-01-02")
			}
			if pageSize < 1 || pageSize > 100 {
				return fmt.Errorf("page-size must be between 1 and 100, got %d", pageSize)
			}

			return DownloadRunLogs(cmd.Context(), DownloadOptions{
				Repo:      repo,
				Workflow:  workflowName,
				StartDate: startDate,
				OutputDir: outputDir,
				PageSize:  pageSize,
				Archive:   archive,
				Verbose:   verbose,
			})
		},
	}

	cmd.Flags().StringP("repo", "r", "", "Repository in owner/repo format")
	cmd.Flags().StringP("workflow", "w", "", "Workflow name or filename (e.g. 'CI' or 'ci.yml')")
	cmd.Flags().IntP("days", "d", 7, "Download runs created within the last N days")
	cmd.Flags().String("start-date", "", "Download runs created on or after this date (YYYY-MM-DD or relative like -2w)")
	cmd.Flags().StringP("output", "o", "logs", "Directory to write run logs into")
	cmd.Flags().Int("page-size", 100, "Number of runs per API page (1-100)")
	cmd.Flags().Bool("archive", false, "Additionally pack each run directory into a run-<id>.zip archive")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("workflow")
	cmd.MarkFlagsMutuallyExclusive("days", "start-date")

	return cmd
}

// getMaxConcurrentDownloads reads the parallelism bound from the
// CI_LOG_MAX_CONCURRENT_DOWNLOADS environment variable, falling back to the
// default when unset or out of range.
func getMaxConcurrentDownloads() int {
	return envutil.GetIntFromEnv("CI_LOG_MAX_CONCURRENT_DOWNLOADS", MaxConcurrentDownloads, 1, 100, downloadLog)
}

// DownloadRunLogs is the download command's orchestration: resolve the
// workflow, list runs since the start date, and download each run's job logs
// concurrently.
func DownloadRunLogs(ctx context.Context, opts DownloadOptions) error {
	downloadLog.Printf("Starting download: repo=%s, workflow=%s, since=%s, output=%s", opts.Repo, opts.Workflow, opts.StartDate, opts.OutputDir)

	spinner := console.NewSpinner(fmt.Sprintf("Resolving workflow %q in %s...", opts.Workflow, opts.Repo))
	spinner.Start()
	wf, err := resolveWorkflow(opts.Repo, opts.Workflow)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithMessage(console.FormatInfoMessage(fmt.Sprintf("Resolved workflow '%s' to %s (id %d)", opts.Workflow, wf.Path, wf.ID)))

	runs, err := listWorkflowRuns(ctx, opts.Repo, wf.ID, opts.StartDate, opts.PageSize)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("No runs of %s since %s", wf.Name, opts.StartDate)))
		return nil
	}
	if opts.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Found %d runs since %s", len(runs), opts.StartDate)))
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	results := downloadRunsConcurrent(ctx, opts, runs)

	downloaded, cached, failed := 0, 0, 0
	for _, result := range results {
		switch {
		case result.Error != nil:
			failed++
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Run %d: %v", result.Run.ID, result.Error)))
		case result.Cached:
			cached++
		default:
			downloaded++
		}
	}

	renderDownloadSummary(results)
	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Downloaded %d runs (%d cached, %d failed)", downloaded, cached, failed)))
	fmt.Fprintln(os.Stderr, console.FormatLocationMessage(opts.OutputDir))

	if failed == len(results) {
		return fmt.Errorf("all %d run downloads failed", failed)
	}
	return nil
}

// downloadRunsConcurrent downloads the job logs of multiple runs in
// parallel. The conc pool bounds parallelism, recovers panics, and stops
// scheduling new work when the context is cancelled.
func downloadRunsConcurrent(ctx context.Context, opts DownloadOptions, runs []WorkflowRun) []DownloadResult {
	var progressBar *console.ProgressBar
	if !opts.Verbose {
		progressBar = console.NewProgressBar(int64(len(runs)))
		fmt.Fprintf(os.Stderr, "Downloading runs: %s\r", progressBar.Update(0))
	}
	var completedCount int64

	p := pool.NewWithResults[DownloadResult]().
		WithContext(ctx).
		WithMaxGoroutines(getMaxConcurrentDownloads())

	for _, run := range runs {
		run := run
		p.Go(func(ctx context.Context) (DownloadResult, error) {
			result := downloadRun(ctx, opts, run)

			completed := atomic.AddInt64(&completedCount, 1)
			if progressBar != nil {
				fmt.Fprintf(os.Stderr, "Downloading runs: %s\r", progressBar.Update(completed))
			}
			return result, nil
		})
	}

	results, err := p.Wait()
	if progressBar != nil {
		console.ClearLine()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Download pool interrupted: %v", err)))
	}

	// Pool results arrive in completion order; restore run order.
	sort.Slice(results, func(i, j int) bool { return results[i].Run.ID > results[j].Run.ID })
	return results
}

// downloadRun fetches all job logs of one run into its run-<id> directory.
// Runs already fully on disk are reported as cached and left untouched; the
// logs of a completed run never change.
func downloadRun(ctx context.Context, opts DownloadOptions, run WorkflowRun) DownloadResult {
	runDir := filepath.Join(opts.OutputDir, fmt.Sprintf("run-%d", run.ID))
	result := DownloadResult{Run: run, Dir: runDir}

	if fileutil.DirExists(runDir) && !fileutil.IsDirEmpty(runDir) && fileutil.FileExists(filepath.Join(runDir, cilog.RunMetadataFile)) {
		downloadLog.Printf("Run %d already downloaded, skipping", run.ID)
		result.Cached = true
		return result
	}

	jobs, err := listRunJobs(ctx, opts.Repo, run.ID)
	if err != nil {
		result.Error = err
		return result
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create run directory: %w", err)
		return result
	}

	var firstStart, lastEnd time.Time
	for _, job := range jobs {
		if !job.StartedAt.IsZero() && (firstStart.IsZero() || job.StartedAt.Before(firstStart)) {
			firstStart = job.StartedAt
		}
		if job.CompletedAt.After(lastEnd) {
			lastEnd = job.CompletedAt
		}

		logData, err := downloadJobLog(ctx, opts.Repo, job.ID)
		if err != nil {
			downloadLog.Printf("Job %d of run %d: %v", job.ID, run.ID, err)
			if opts.Verbose {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Run %d: %v", run.ID, err)))
			}
			continue
		}
		path := filepath.Join(runDir, jobLogFileName(job))
		if err := os.WriteFile(path, logData, 0644); err != nil {
			result.Error = fmt.Errorf("failed to write job log: %w", err)
			return result
		}
		result.Jobs++
	}
	if !firstStart.IsZero() && lastEnd.After(firstStart) {
		result.Duration = lastEnd.Sub(firstStart)
	}
	if opts.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Run %d: wrote %d job logs", run.ID, result.Jobs)))
	}

	// The metadata file is written last: its presence marks the run as
	// completely downloaded.
	if err := writeRunMetadata(runDir, run); err != nil {
		result.Error = err
		return result
	}

	if opts.Archive {
		if err := archiveRunDir(runDir); err != nil {
			result.Error = fmt.Errorf("failed to archive run %d: %w", run.ID, err)
			return result
		}
	}
	return result
}

// jobLogFileName builds the <job-id>-<job-name>.log filename the report
// command's walker expects. Spaces become underscores and anything unsafe in
// a filename is collapsed.
func jobLogFileName(job WorkflowJob) string {
	name := jobNameSanitizer.ReplaceAllString(job.Name, "_")
	return fmt.Sprintf("%d-%s.log", job.ID, name)
}

// writeRunMetadata writes run.json so the report command can recover the run
// creation time without network access.
func writeRunMetadata(runDir string, run WorkflowRun) error {
	meta := cilog.RunMeta{
		ID:         run.ID,
		Status:     run.Status,
		Conclusion: run.Conclusion,
		CreatedAt:  run.CreatedAt,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, cilog.RunMetadataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}
	return nil
}

// renderDownloadSummary prints a per-run overview table to stdout.
func renderDownloadSummary(results []DownloadResult) {
	rows := make([][]string, 0, len(results))
	totalJobs := 0
	for _, result := range results {
		status := result.Run.Conclusion
		if status == "" {
			status = result.Run.Status
		}
		note := ""
		switch {
		case result.Error != nil:
			note = "failed"
		case result.Cached:
			note = "cached"
		}
		duration := ""
		if result.Duration > 0 {
			duration = timeutil.FormatDuration(result.Duration)
		}
		totalJobs += result.Jobs
		rows = append(rows, []string{
			strconv.FormatInt(result.Run.ID, 10),
			result.Run.CreatedAt.Format("2006-01-02 15:04"),
			result.Run.HeadBranch,
			status,
			strconv.Itoa(result.Jobs),
			duration,
			note,
		})
	}

	fmt.Println(console.RenderTable(console.TableConfig{
		Title:     "Downloaded Runs",
		Headers:   []string{"Run", "Created", "Branch", "Conclusion", "Jobs", "Duration", ""},
		Rows:      rows,
		ShowTotal: true,
		TotalRow:  []string{"Total", "", "", "", strconv.Itoa(totalJobs), "", ""},
	}))
}
