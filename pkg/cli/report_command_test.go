package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
)

func writeTestRun(t *testing.T, root, runID, createdAt string, logs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, "run-"+runID)
	require.NoError(t, os.MkdirAll(dir, 0755))
	meta := `{"id": ` + runID + `, "status": "completed", "conclusion": "failure", "created_at": "` + createdAt + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, cilog.RunMetadataFile), []byte(meta), 0644))
	for name, content := range logs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestBuildReport(t *testing.T) {
	root := t.TempDir()
	writeTestRun(t, root, "100", "2024-01-01T08:00:00Z", map[string]string{
		"1-build.log": "2024-01-01T08:10:00Z ERROR: connection timed out\n",
		"2-tests.log": "Tests: 3 failed, 50 passed\n",
	})
	writeTestRun(t, root, "101", "2024-01-03T09:00:00Z", map[string]string{
		"3-build.log": "2024-01-03T09:05:00Z dial tcp: connection refused\n",
	})

	report, err := BuildReport([]string{root}, cilog.DefaultRules(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Runs)
	assert.Len(t, report.Records, 3)
	require.Len(t, report.Buckets, 3)
	assert.Empty(t, report.Warnings)

	assert.Equal(t, 1, report.Buckets[0].Counts["timeout"])
	assert.Equal(t, 1, report.Buckets[0].Counts["test_failure"])
	assert.Equal(t, 0, report.Buckets[1].Counts["timeout"])
	assert.Equal(t, 1, report.Buckets[2].Counts["network"])

	require.Len(t, report.Jobs, 2)
	assert.Equal(t, "build", report.Jobs[0].JobName)
	assert.Equal(t, 2, report.Jobs[0].Total)
}

func TestBuildReportNoRuns(t *testing.T) {
	_, err := BuildReport([]string{t.TempDir()}, cilog.DefaultRules(), time.Hour)
	assert.ErrorIs(t, err, cilog.ErrNoRuns)
}

func TestBuildReportEmptyLogs(t *testing.T) {
	root := t.TempDir()
	writeTestRun(t, root, "100", "2024-01-01T08:00:00Z", map[string]string{
		"1-build.log": "",
	})

	report, err := BuildReport([]string{root}, cilog.DefaultRules(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Runs)
	assert.Empty(t, report.Records)
	assert.Empty(t, report.Buckets)
}

func TestWriteReportJSON(t *testing.T) {
	root := t.TempDir()
	writeTestRun(t, root, "100", "2024-01-01T08:00:00Z", map[string]string{
		"1-build.log": "2024-01-01T08:10:00Z ERROR: connection timed out\n",
	})

	report, err := BuildReport([]string{root}, cilog.DefaultRules(), 24*time.Hour)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, writeReportJSON(&sb, report))

	var decoded struct {
		Runs     int            `json:"runs"`
		Failures int            `json:"failures"`
		Totals   map[string]int `json:"totals"`
		Buckets  []struct {
			Start  time.Time      `json:"start"`
			Counts map[string]int `json:"counts"`
		} `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &decoded))

	assert.Equal(t, 1, decoded.Runs)
	assert.Equal(t, 1, decoded.Failures)
	assert.Equal(t, map[string]int{"timeout": 1}, decoded.Totals)
	require.Len(t, decoded.Buckets, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), decoded.Buckets[0].Start)
}

func TestFormatBucketStart(t *testing.T) {
	ts := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01", formatBucketStart(ts, 24*time.Hour))
	assert.Equal(t, "2024-01-01 06:00", formatBucketStart(ts, 6*time.Hour))
}

func TestFormatJobCategories(t *testing.T) {
	jc := cilog.JobCount{
		JobName: "build",
		Total:   3,
		Counts:  map[string]int{"timeout": 2, "network": 1},
	}
	assert.Equal(t, "network: 1, timeout: 2", formatJobCategories(jc))
}
