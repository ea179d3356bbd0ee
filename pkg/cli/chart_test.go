package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
)

func TestBuildTimeChart(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	buckets := []cilog.Bucket{
		{Start: day1, Counts: map[string]int{"timeout": 4, "network": 2}},
		{Start: day1.AddDate(0, 0, 1), Counts: map[string]int{"timeout": 0, "network": 0}},
		{Start: day1.AddDate(0, 0, 2), Counts: map[string]int{"timeout": 1, "network": 0}},
	}

	chart := BuildTimeChart(buckets, 24*time.Hour, 30, false)
	lines := strings.Split(strings.TrimRight(chart, "\n"), "\n")

	assert.Contains(t, lines[0], "Failures over time")
	assert.Contains(t, chart, "2024-01-01")
	assert.Contains(t, chart, "2024-01-02")
	assert.Contains(t, chart, "2024-01-03")

	// The busiest bucket ends with its total; the empty bucket shows zero.
	assert.Contains(t, chart, " 6\n")
	assert.Contains(t, chart, "│ 0\n")

	// Legend names both categories in sorted order.
	legend := lines[len(lines)-1]
	assert.Contains(t, legend, "network")
	assert.Contains(t, legend, "timeout")
	assert.Less(t, strings.Index(legend, "network"), strings.Index(legend, "timeout"))
}

func TestBuildTimeChartEmpty(t *testing.T) {
	assert.Empty(t, BuildTimeChart(nil, time.Hour, 30, false))
}

func TestBuildJobChart(t *testing.T) {
	counts := []cilog.JobCount{
		{JobName: "integration tests", Total: 8, Counts: map[string]int{"timeout": 8}},
		{JobName: "build", Total: 4, Counts: map[string]int{"network": 4}},
		{JobName: "lint", Total: 1, Counts: map[string]int{"unclassified": 1}},
	}

	chart := BuildJobChart(counts, 40, false)

	assert.Contains(t, chart, "integration tests")
	assert.Contains(t, chart, "build")
	assert.Contains(t, chart, "m = mean (4.3)")
	assert.Contains(t, chart, "d = median (4.0)")

	// The noisiest job gets the widest bar.
	lines := strings.Split(chart, "\n")
	var widest, buildBar int
	for _, line := range lines {
		if strings.HasPrefix(line, "integration tests") {
			widest = strings.Count(line, "█")
		}
		if strings.HasPrefix(line, "build") {
			buildBar = strings.Count(line, "█")
		}
	}
	require.Greater(t, widest, 0)
	assert.Equal(t, 40, widest)
	assert.Equal(t, 20, buildBar)
}

func TestJobStats(t *testing.T) {
	tests := []struct {
		name   string
		totals []int
		mean   float64
		median float64
	}{
		{"odd count", []int{8, 4, 1}, 13.0 / 3, 4},
		{"even count", []int{10, 6, 4, 2}, 5.5, 5},
		{"single job", []int{3}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make([]cilog.JobCount, len(tt.totals))
			for i, total := range tt.totals {
				counts[i] = cilog.JobCount{JobName: "j", Total: total}
			}
			mean, median := jobStats(counts)
			assert.InDelta(t, tt.mean, mean, 0.001)
			assert.InDelta(t, tt.median, median, 0.001)
		})
	}
}
