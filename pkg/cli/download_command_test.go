//go:build !js && !wasm

package cli

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
)

func TestJobLogFileName(t *testing.T) {
	tests := []struct {
		name string
		job  WorkflowJob
		want string
	}{
		{
			name: "spaces become underscores",
			job:  WorkflowJob{ID: 42, Name: "integration tests"},
			want: "42-integration_tests.log",
		},
		{
			name: "matrix job with slashes and parens",
			job:  WorkflowJob{ID: 7, Name: "build (ubuntu-latest, go/1.25)"},
			want: "7-build_ubuntu-latest_go_1.25_.log",
		},
		{
			name: "plain name unchanged",
			job:  WorkflowJob{ID: 1, Name: "lint"},
			want: "1-lint.log",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jobLogFileName(tt.job))
		})
	}
}

func TestWriteRunMetadata(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	run := WorkflowRun{ID: 12345, Status: "completed", Conclusion: "failure", CreatedAt: created}

	require.NoError(t, writeRunMetadata(dir, run))

	data, err := os.ReadFile(filepath.Join(dir, cilog.RunMetadataFile))
	require.NoError(t, err)

	var meta cilog.RunMeta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, int64(12345), meta.ID)
	assert.Equal(t, "failure", meta.Conclusion)
	assert.True(t, meta.CreatedAt.Equal(created))
}

func TestArchiveRunDir(t *testing.T) {
	root := t.TempDir()
	runDir := filepath.Join(root, "run-99")
	require.NoError(t, os.MkdirAll(runDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "1-build.log"), []byte("ERROR: boom\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, cilog.RunMetadataFile), []byte("{}"), 0644))

	require.NoError(t, archiveRunDir(runDir))

	r, err := zip.OpenReader(runDir + ".zip")
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"1-build.log", cilog.RunMetadataFile}, names)

	// The original directory stays in place for reporting.
	info, err := os.Stat(runDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
