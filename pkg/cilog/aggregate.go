package cilog

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// Aggregate groups failure records into fixed-width time buckets with
// per-category counts. Buckets are half-open intervals [start, start+width):
// a record exactly on a boundary lands in the later bucket. The returned
// slice is contiguous from the bucket containing the earliest record to the
// bucket containing the latest; intermediate buckets with no failures are
// present with all-zero counts. Every bucket carries the same category keys,
// the union of categories seen across all records. No records yields an
// empty slice.
func Aggregate(records []FailureRecord, width time.Duration) ([]Bucket, error) {
	if width <= 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %s", width)
	}
	if len(records) == 0 {
		return nil, nil
	}

	min, max := records[0].Timestamp.UTC(), records[0].Timestamp.UTC()
	for _, rec := range records[1:] {
		ts := rec.Timestamp.UTC()
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}

	categories := Categories(records)
	start := min.Truncate(width)
	count := int(max.Sub(start)/width) + 1

	buckets := make([]Bucket, count)
	for i := range buckets {
		counts := make(map[string]int, len(categories))
		for _, cat := range categories {
			counts[cat] = 0
		}
		buckets[i] = Bucket{Start: start.Add(time.Duration(i) * width), Counts: counts}
	}

	for _, rec := range records {
		idx := int(rec.Timestamp.UTC().Sub(start) / width)
		buckets[idx].Counts[rec.Category]++
	}
	return buckets, nil
}

// Categories returns the sorted set of categories present in the records.
func Categories(records []FailureRecord) []string {
	set := make(map[string]bool)
	for _, rec := range records {
		set[rec.Category] = true
	}
	categories := make([]string, 0, len(set))
	for cat := range set {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}

// CategoryTotals sums bucket counts per category across all buckets.
func CategoryTotals(buckets []Bucket) map[string]int {
	totals := make(map[string]int)
	for _, b := range buckets {
		for cat, n := range b.Counts {
			totals[cat] += n
		}
	}
	return totals
}

// JobCount is the failure tally of one job across all scanned runs.
type JobCount struct {
	JobName string         `json:"job"`
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
}

// CountByJob tallies failures per job name, ordered by total descending so
// the noisiest jobs lead the per-job chart. Ties break on job name.
func CountByJob(records []FailureRecord) []JobCount {
	byName := make(map[string]*JobCount)
	for _, rec := range records {
		jc, ok := byName[rec.JobName]
		if !ok {
			jc = &JobCount{JobName: rec.JobName, Counts: make(map[string]int)}
			byName[rec.JobName] = jc
		}
		jc.Total++
		jc.Counts[rec.Category]++
	}

	counts := make([]JobCount, 0, len(byName))
	for _, jc := range byName {
		counts = append(counts, *jc)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Total != counts[j].Total {
			return counts[i].Total > counts[j].Total
		}
		return counts[i].JobName < counts[j].JobName
	})
	return counts
}

// WriteTSV writes buckets as tab-separated bucket/category/count triples,
// one row per bucket and category, in bucket then category order.
func WriteTSV(w io.Writer, buckets []Bucket) error {
	if _, err := fmt.Fprintln(w, "bucket\tcategory\tcount"); err != nil {
		return err
	}
	for _, b := range buckets {
		categories := make([]string, 0, len(b.Counts))
		for cat := range b.Counts {
			categories = append(categories, cat)
		}
		sort.Strings(categories)
		for _, cat := range categories {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", b.Start.Format(time.RFC3339), cat, b.Counts[cat]); err != nil {
				return err
			}
		}
	}
	return nil
}
