// Package cilog is the core of the CI log reporter: it discovers downloaded
// run directories, scans job logs for failure signatures, and aggregates the
// findings into time-bucketed counts per failure category.
//
// The package is deliberately pure: it reads the input tree, never mutates
// it, and holds no state between invocations. All configuration (rule table,
// bucket width, input paths) is passed explicitly.
package cilog

import "time"

// RunMetadataFile is the per-run metadata file written by the download
// command next to the job logs. It is optional: runs downloaded by other
// tooling fall back to the directory modification time for their creation
// timestamp.
const RunMetadataFile = "run.json"

// Run is one execution of the monitored workflow, represented on disk as a
// run-<id> directory containing one log file per job.
type Run struct {
	// ID is the opaque run identifier taken from the directory name.
	ID string
	// CreatedAt is the run creation time, from run.json when present.
	CreatedAt time.Time
	// Dir is the absolute or caller-relative path of the run directory.
	Dir string
	// Jobs lists the job logs discovered in the directory, ordered by
	// filename.
	Jobs []JobLog
}

// JobLog is one job's raw log file within a run directory.
type JobLog struct {
	// ID is the leading numeric prefix of the filename (the job's forge
	// identifier or ordinal index).
	ID string
	// Name is the human-readable job name, with underscores restored to
	// spaces.
	Name string
	// Path is the location of the raw log file.
	Path string
}

// RunMeta mirrors the JSON structure of the run.json metadata file.
type RunMeta struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
}

// FailureRecord is one normalized, categorized failure event derived from a
// matched log line.
type FailureRecord struct {
	// RunID and JobID reference the run and job the record came from.
	RunID string
	JobID string
	// JobName is the human-readable job name, carried through for the
	// per-job failure chart.
	JobName string
	// Category is never empty; lines matched by a rule without a category
	// fall back to UnclassifiedCategory.
	Category string
	// Timestamp is parsed from the matched line when possible, otherwise
	// inherited from the run's creation time.
	Timestamp time.Time
	// Duration is nonzero only when the matched line carried a timing
	// marker.
	Duration time.Duration
}

// Bucket is a fixed-width time interval paired with per-category failure
// counts. Intervals are half-open: [Start, Start+width).
type Bucket struct {
	Start  time.Time
	Counts map[string]int
}
