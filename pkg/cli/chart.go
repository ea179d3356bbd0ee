// This file renders the terminal histograms of the chart command: a stacked
// failures-over-time chart and a per-job chart with mean and median markers.

package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sammayer/ci-log-processor/pkg/cilog"
	"github.com/sammayer/ci-log-processor/pkg/styles"
)

// chartFillRunes are the per-category fill characters used when color is
// off, so stacked segments stay distinguishable in plain output.
var chartFillRunes = []rune{'█', '▓', '▒', '░', '▦', '▩'}

func categorySwatch(index int, color bool) string {
	fill := string(chartFillRunes[index%len(chartFillRunes)])
	if color {
		return styles.CategoryStyle(index).Render(fill)
	}
	return fill
}

func categorySegment(index, length int, color bool) string {
	segment := strings.Repeat(string(chartFillRunes[index%len(chartFillRunes)]), length)
	if color {
		return styles.CategoryStyle(index).Render(segment)
	}
	return segment
}

// BuildTimeChart renders failures over time as one stacked bar per bucket.
// Bars are scaled so the busiest bucket spans the full width.
func BuildTimeChart(buckets []cilog.Bucket, bucket time.Duration, width int, color bool) string {
	if len(buckets) == 0 {
		return ""
	}

	categories := bucketCategories(buckets)
	maxTotal := 0
	for _, b := range buckets {
		total := 0
		for _, n := range b.Counts {
			total += n
		}
		if total > maxTotal {
			maxTotal = total
		}
	}

	var sb strings.Builder
	sb.WriteString("Failures over time\n\n")

	for _, b := range buckets {
		label := formatBucketStart(b.Start, bucket)
		total := 0
		var bar strings.Builder
		for i, cat := range categories {
			count := b.Counts[cat]
			total += count
			if maxTotal == 0 || count == 0 {
				continue
			}
			length := count * width / maxTotal
			if length == 0 {
				length = 1
			}
			bar.WriteString(categorySegment(i, length, color))
		}
		fmt.Fprintf(&sb, "%-16s │%s %d\n", label, bar.String(), total)
	}

	sb.WriteString("\n")
	for i, cat := range categories {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(categorySwatch(i, color))
		sb.WriteString(" ")
		sb.WriteString(cat)
	}
	sb.WriteString("\n")
	return sb.String()
}

// BuildJobChart renders one bar per job, noisiest first, with the mean and
// median failure counts marked on a ruler below the bars.
func BuildJobChart(counts []cilog.JobCount, width int, color bool) string {
	if len(counts) == 0 {
		return ""
	}

	maxTotal := counts[0].Total
	labelWidth := 0
	for _, jc := range counts {
		if len(jc.JobName) > labelWidth {
			labelWidth = len(jc.JobName)
		}
	}

	var sb strings.Builder
	sb.WriteString("Failures by job\n\n")

	for _, jc := range counts {
		length := 0
		if maxTotal > 0 {
			length = jc.Total * width / maxTotal
			if length == 0 && jc.Total > 0 {
				length = 1
			}
		}
		fmt.Fprintf(&sb, "%-*s │%s %d\n", labelWidth, jc.JobName, categorySegment(0, length, color), jc.Total)
	}

	mean, median := jobStats(counts)
	ruler := make([]rune, width+1)
	for i := range ruler {
		ruler[i] = ' '
	}
	if maxTotal > 0 {
		meanPos := int(mean * float64(width) / float64(maxTotal))
		medianPos := int(median * float64(width) / float64(maxTotal))
		ruler[clampIndex(medianPos, width)] = 'd'
		ruler[clampIndex(meanPos, width)] = 'm'
	}
	fmt.Fprintf(&sb, "%-*s │%s\n", labelWidth, "", string(ruler))
	fmt.Fprintf(&sb, "\nm = mean (%.1f)  d = median (%.1f)\n", mean, median)
	return sb.String()
}

// jobStats returns the mean and median of the per-job failure totals.
// counts must be sorted by total, which CountByJob guarantees.
func jobStats(counts []cilog.JobCount) (mean, median float64) {
	if len(counts) == 0 {
		return 0, 0
	}
	sum := 0
	for _, jc := range counts {
		sum += jc.Total
	}
	mean = float64(sum) / float64(len(counts))

	mid := len(counts) / 2
	if len(counts)%2 == 1 {
		median = float64(counts[mid].Total)
	} else {
		median = float64(counts[mid-1].Total+counts[mid].Total) / 2
	}
	return mean, median
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// bucketCategories returns the sorted category keys of the buckets. Every
// bucket carries the same keys, so the first one suffices.
func bucketCategories(buckets []cilog.Bucket) []string {
	if len(buckets) == 0 {
		return nil
	}
	categories := make([]string, 0, len(buckets[0].Counts))
	for cat := range buckets[0].Counts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}
