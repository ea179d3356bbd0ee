//go:build !js && !wasm

// This file contains the typed GitHub Actions API surface used by the
// download command: resolving a workflow by name, listing its runs within a
// date window, listing the jobs of a run, and fetching a job's raw log.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var apiLog = logger.New("cli:api")

// WorkflowInfo is one workflow definition of a repository.
type WorkflowInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	State string `json:"state"`
}

// WorkflowRun is one run of a workflow as returned by the Actions API.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	HeadBranch string    `json:"head_branch"`
	Event      string    `json:"event"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkflowJob is one job of a workflow run.
type WorkflowJob struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Conclusion  string    `json:"conclusion"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

type workflowsResponse struct {
	Workflows []WorkflowInfo `json:"workflows"`
}

type runsResponse struct {
	TotalCount   int           `json:"total_count"`
	WorkflowRuns []WorkflowRun `json:"workflow_runs"`
}

type jobsResponse struct {
	Jobs []WorkflowJob `json:"jobs"`
}

// resolveWorkflow finds a workflow of the repository by name or by filename
// (with or without the .yml extension).
func resolveWorkflow(repo, name string) (WorkflowInfo, error) {
	apiLog.Printf("Resolving workflow %q in %s", name, repo)

	stdout, stderr, err := ExecGHWithOutput("api", "--paginate", fmt.Sprintf("repos/%s/actions/workflows", repo))
	if err != nil {
		return WorkflowInfo{}, fmt.Errorf("failed to list workflows for %s: %w (%s)", repo, err, strings.TrimSpace(stderr.String()))
	}

	// --paginate concatenates one JSON object per page.
	decoder := json.NewDecoder(&stdout)
	var workflows []WorkflowInfo
	for decoder.More() {
		var page workflowsResponse
		if err := decoder.Decode(&page); err != nil {
			return WorkflowInfo{}, fmt.Errorf("failed to parse workflows response: %w", err)
		}
		workflows = append(workflows, page.Workflows...)
	}

	if wf, ok := findWorkflow(workflows, name); ok {
		return wf, nil
	}

	names := make([]string, 0, len(workflows))
	for _, wf := range workflows {
		names = append(names, wf.Name)
	}
	return WorkflowInfo{}, fmt.Errorf("workflow %q not found in %s (available: %s)", name, repo, strings.Join(names, ", "))
}

// findWorkflow matches a workflow by display name or by the basename of its
// definition file, with or without the YAML extension.
func findWorkflow(workflows []WorkflowInfo, name string) (WorkflowInfo, bool) {
	for _, wf := range workflows {
		if wf.Name == name {
			return wf, true
		}
		base := wf.Path[strings.LastIndex(wf.Path, "/")+1:]
		if base == name || strings.TrimSuffix(base, ".yml") == name || strings.TrimSuffix(base, ".yaml") == name {
			return wf, true
		}
	}
	return WorkflowInfo{}, false
}

// listWorkflowRuns lists runs of the workflow created on or after the given
// date (YYYY-MM-DD), newest first, following pagination until the API stops
// returning results.
func listWorkflowRuns(ctx context.Context, repo string, workflowID int64, since string, pageSize int) ([]WorkflowRun, error) {
	apiLog.Printf("Listing runs: repo=%s, workflow=%d, since=%s, pageSize=%d", repo, workflowID, since, pageSize)

	var runs []WorkflowRun
	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		output, err := RunGH(
			fmt.Sprintf("Listing runs since %s (page %d)...", since, page),
			"api", "-X", "GET",
			fmt.Sprintf("repos/%s/actions/workflows/%d/runs", repo, workflowID),
			"-f", "created=>="+since,
			"-f", "per_page="+strconv.Itoa(pageSize),
			"-f", "page="+strconv.Itoa(page),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflow runs (page %d): %w", page, err)
		}

		var resp runsResponse
		if err := json.Unmarshal(output, &resp); err != nil {
			return nil, fmt.Errorf("failed to parse workflow runs response: %w", err)
		}
		runs = append(runs, resp.WorkflowRuns...)

		apiLog.Printf("Page %d returned %d runs (%d/%d total)", page, len(resp.WorkflowRuns), len(runs), resp.TotalCount)
		if len(resp.WorkflowRuns) < pageSize || len(runs) >= resp.TotalCount {
			break
		}
	}
	return runs, nil
}

// listRunJobs lists all jobs of a workflow run.
func listRunJobs(ctx context.Context, repo string, runID int64) ([]WorkflowJob, error) {
	output, err := ExecGHContext(ctx, "api", "--paginate", fmt.Sprintf("repos/%s/actions/runs/%d/jobs", repo, runID)).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for run %d: %w", runID, err)
	}

	decoder := json.NewDecoder(strings.NewReader(string(output)))
	var jobs []WorkflowJob
	for decoder.More() {
		var page jobsResponse
		if err := decoder.Decode(&page); err != nil {
			return nil, fmt.Errorf("failed to parse jobs response for run %d: %w", runID, err)
		}
		jobs = append(jobs, page.Jobs...)
	}
	return jobs, nil
}

// downloadJobLog fetches the raw log text of a single job. The endpoint
// answers with a redirect to the log storage, which gh follows.
func downloadJobLog(ctx context.Context, repo string, jobID int64) ([]byte, error) {
	output, err := ExecGHContext(ctx, "api", fmt.Sprintf("repos/%s/actions/jobs/%d/logs", repo, jobID)).Output()
	if err != nil {
		// Expired runs drop their logs server-side; surface that distinctly.
		if strings.Contains(err.Error(), "410") {
			return nil, fmt.Errorf("log for job %d is no longer available: %w", jobID, err)
		}
		return nil, fmt.Errorf("failed to download log for job %d: %w", jobID, err)
	}
	return output, nil
}
