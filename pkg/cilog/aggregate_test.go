package cilog

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(category string, ts time.Time) FailureRecord {
	return FailureRecord{RunID: "1", JobID: "1", JobName: "build", Category: category, Timestamp: ts}
}

func TestAggregateDailyBuckets(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []FailureRecord{
		rec("timeout", day1),
		rec("timeout", day1.Add(2*time.Hour)),
		rec("test_failure", day1.Add(3*time.Hour)),
		rec("timeout", day1.AddDate(0, 0, 2)),
	}

	buckets, err := Aggregate(records, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, map[string]int{"timeout": 2, "test_failure": 1}, buckets[0].Counts)

	// Jan 2 had no failures but is still present, zero-filled for every
	// category seen anywhere in the input.
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), buckets[1].Start)
	assert.Equal(t, map[string]int{"timeout": 0, "test_failure": 0}, buckets[1].Counts)

	assert.Equal(t, map[string]int{"timeout": 1, "test_failure": 0}, buckets[2].Counts)
}

func TestAggregateBoundaryGoesToLaterBucket(t *testing.T) {
	records := []FailureRecord{
		rec("timeout", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)),
		rec("timeout", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
	}

	buckets, err := Aggregate(records, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, 1, buckets[0].Counts["timeout"])
	assert.Equal(t, 1, buckets[1].Counts["timeout"])
}

func TestAggregateConservation(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(7))
	categories := []string{"timeout", "network", "oom", UnclassifiedCategory}

	var records []FailureRecord
	for i := 0; i < 500; i++ {
		records = append(records, rec(
			categories[rng.Intn(len(categories))],
			base.Add(time.Duration(rng.Intn(14*24*3600))*time.Second),
		))
	}

	buckets, err := Aggregate(records, 6*time.Hour)
	require.NoError(t, err)

	total := 0
	for _, n := range CategoryTotals(buckets) {
		total += n
	}
	assert.Equal(t, len(records), total)

	// Buckets are contiguous and uniformly spaced.
	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, 6*time.Hour, buckets[i].Start.Sub(buckets[i-1].Start))
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []FailureRecord{
		rec("timeout", base.Add(30*time.Hour)),
		rec("network", base),
		rec("timeout", base.Add(5*time.Hour)),
	}
	reversed := []FailureRecord{records[2], records[1], records[0]}

	a, err := Aggregate(records, 24*time.Hour)
	require.NoError(t, err)
	b, err := Aggregate(reversed, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScanAndAggregateSingleTimeout(t *testing.T) {
	log := "ERROR: connection timed out at 2024-01-01T10:00:00Z\n"
	records := ScanJobLog(strings.NewReader(log), DefaultRules(), Run{ID: "1"}, JobLog{ID: "1", Name: "build"})
	require.Len(t, records, 1)

	buckets, err := Aggregate(records, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, map[string]int{"timeout": 1}, buckets[0].Counts)
}

func TestScanAndAggregateTwoJobsOneBucketApart(t *testing.T) {
	rules := DefaultRules()
	run := Run{ID: "9"}
	timeoutLog := "2024-01-01T10:00:00Z ERROR: connection timed out\n"
	assertionLog := "2024-01-02T10:00:00Z assertion failed: want 3, got 4\n"

	records := ScanJobLog(strings.NewReader(timeoutLog), rules, run, JobLog{ID: "1", Name: "build"})
	records = append(records, ScanJobLog(strings.NewReader(assertionLog), rules, run, JobLog{ID: "2", Name: "tests"})...)
	require.Len(t, records, 2)

	buckets, err := Aggregate(records, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, map[string]int{"timeout": 1, "assertion": 0}, buckets[0].Counts)
	assert.Equal(t, map[string]int{"timeout": 0, "assertion": 1}, buckets[1].Counts)
}

func TestAggregateEmptyInput(t *testing.T) {
	buckets, err := Aggregate(nil, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestAggregateInvalidWidth(t *testing.T) {
	_, err := Aggregate([]FailureRecord{rec("timeout", time.Now())}, 0)
	assert.Error(t, err)
}

func TestAggregateNormalizesZones(t *testing.T) {
	// 01:00+02:00 is 23:00Z the previous day; both records share a bucket.
	zone := time.FixedZone("CEST", 2*3600)
	records := []FailureRecord{
		rec("timeout", time.Date(2024, 1, 2, 1, 0, 0, 0, zone)),
		rec("timeout", time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)),
	}

	buckets, err := Aggregate(records, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 2, buckets[0].Counts["timeout"])
}

func TestCountByJob(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []FailureRecord{
		{JobName: "build", Category: "timeout", Timestamp: base},
		{JobName: "tests", Category: "test_failure", Timestamp: base},
		{JobName: "tests", Category: "timeout", Timestamp: base},
		{JobName: "deploy", Category: "network", Timestamp: base},
	}

	counts := CountByJob(records)
	require.Len(t, counts, 3)
	assert.Equal(t, "tests", counts[0].JobName)
	assert.Equal(t, 2, counts[0].Total)
	// Ties order alphabetically.
	assert.Equal(t, "build", counts[1].JobName)
	assert.Equal(t, "deploy", counts[2].JobName)
	assert.Equal(t, map[string]int{"test_failure": 1, "timeout": 1}, counts[0].Counts)
}

func TestWriteTSV(t *testing.T) {
	buckets := []Bucket{
		{
			Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Counts: map[string]int{"timeout": 2, "network": 0},
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteTSV(&sb, buckets))

	want := "bucket\tcategory\tcount\n" +
		"2024-01-01T00:00:00Z\tnetwork\t0\n" +
		"2024-01-01T00:00:00Z\ttimeout\t2\n"
	assert.Equal(t, want, sb.String())
}
