package cilog

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var scanLog = logger.New("cilog:scanner")

const (
	// scanInitialBuffer and scanMaxLine size the line scanner. Job logs
	// occasionally embed very long lines (single-line JSON payloads, base64
	// blobs); lines beyond the max abort the scan of that file without
	// failing the report.
	scanInitialBuffer = 64 * 1024
	scanMaxLine       = 4 * 1024 * 1024
)

// timestampPattern matches the ISO 8601 timestamps that the forge prefixes
// onto every log line, with or without fractional seconds and zone offset.
var timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?`)

// durationPattern matches timing markers like "took 3.2s", "after 120ms" or
// "in 5m" that some tooling prints alongside failures.
var durationPattern = regexp.MustCompile(`(?i)\b(?:took|after|in|elapsed)\s+(\d+(?:\.\d+)?)\s*(ms|s|m|h)\b`)

// timestampLayouts are tried in order when parsing an extracted timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ScanJobLog reads a raw job log line by line and returns one FailureRecord
// per line matched by the rule table. Lines that match no rule are skipped.
// A line whose timestamp is missing or unparseable still produces a record,
// timestamped with the run's creation time. Read errors (binary content,
// oversized lines, truncation) end the scan early; records collected up to
// that point are returned.
func ScanJobLog(r io.Reader, rules *RuleSet, run Run, job JobLog) []FailureRecord {
	var records []FailureRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanInitialBuffer), scanMaxLine)

	for scanner.Scan() {
		line := scanner.Text()
		rule, ok := rules.Match(line)
		if !ok {
			continue
		}
		records = append(records, FailureRecord{
			RunID:     run.ID,
			JobID:     job.ID,
			JobName:   job.Name,
			Category:  rule.Category,
			Timestamp: extractTimestamp(line, run.CreatedAt),
			Duration:  extractDuration(line),
		})
	}
	if err := scanner.Err(); err != nil {
		scanLog.Printf("Scan of %s ended early: %v (%d records kept)", job.Path, err, len(records))
	}

	return records
}

// extractTimestamp parses the first timestamp on the line, falling back to
// the run creation time when the line has none or it does not parse.
func extractTimestamp(line string, fallback time.Time) time.Time {
	raw := timestampPattern.FindString(line)
	if raw == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	scanLog.Printf("Malformed timestamp %q, using run creation time", raw)
	return fallback
}

// extractDuration parses a timing marker from the line, returning zero when
// the line carries none.
func extractDuration(line string) time.Duration {
	m := durationPattern.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "ms":
		return time.Duration(value * float64(time.Millisecond))
	case "s":
		return time.Duration(value * float64(time.Second))
	case "m":
		return time.Duration(value * float64(time.Minute))
	case "h":
		return time.Duration(value * float64(time.Hour))
	}
	return 0
}
