package cilog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var walkLog = logger.New("cilog:walker")

// ErrNoRuns indicates that the given input paths contained no run
// directories at all. An input tree that exists but holds zero runs is the
// only discovery condition treated as an error; empty runs and unreadable
// logs merely degrade the report.
var ErrNoRuns = errors.New("no run directories found")

var (
	runDirPattern = regexp.MustCompile(`^run-([A-Za-z0-9_-]+)$`)
	jobLogPattern = regexp.MustCompile(`^(\d+)-(.+)\.log$`)
)

// DiscoverRuns resolves the given paths into run directories. Each path may
// be a run-<id> directory itself, a parent directory holding run-<id>
// subdirectories, or a glob matching either. Duplicate directories reached
// through multiple paths are counted once. Results are ordered by run ID for
// stable output.
func DiscoverRuns(paths []string) ([]Run, error) {
	seen := make(map[string]bool)
	var dirs []string

	addDir := func(dir string) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		dirs = append(dirs, dir)
	}

	collect := func(path string) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		if runDirPattern.MatchString(filepath.Base(path)) {
			addDir(path)
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.IsDir() && runDirPattern.MatchString(entry.Name()) {
				addDir(filepath.Join(path, entry.Name()))
			}
		}
		return nil
	}

	for _, path := range paths {
		if strings.ContainsAny(path, "*?[") {
			matches, err := filepath.Glob(path)
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern %s: %w", path, err)
			}
			walkLog.Printf("Glob %s matched %d paths", path, len(matches))
			for _, match := range matches {
				// Globs like run-* also pick up the zip archives written
				// next to the run directories; only directories count.
				if info, err := os.Stat(match); err != nil || !info.IsDir() {
					continue
				}
				if err := collect(match); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := collect(path); err != nil {
			return nil, fmt.Errorf("failed to read input path: %w", err)
		}
	}

	if len(dirs) == 0 {
		return nil, ErrNoRuns
	}

	runs := make([]Run, 0, len(dirs))
	for _, dir := range dirs {
		run, err := loadRun(dir)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].ID != runs[j].ID {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Dir < runs[j].Dir
	})
	walkLog.Printf("Discovered %d run directories", len(runs))
	return runs, nil
}

// loadRun reads one run directory: its metadata file when present and the
// job log files matching the <id>-<name>.log naming convention. Files with
// other names (the metadata file, archives, stray downloads) are ignored.
func loadRun(dir string) (Run, error) {
	run := Run{
		ID:  strings.TrimPrefix(filepath.Base(dir), "run-"),
		Dir: dir,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Run{}, fmt.Errorf("failed to read run directory: %w", err)
	}

	if meta, err := readRunMeta(filepath.Join(dir, RunMetadataFile)); err == nil {
		run.CreatedAt = meta.CreatedAt
	} else {
		walkLog.Printf("No usable %s in %s: %v", RunMetadataFile, dir, err)
	}
	if run.CreatedAt.IsZero() {
		if info, err := os.Stat(dir); err == nil {
			run.CreatedAt = info.ModTime()
		}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := jobLogPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		run.Jobs = append(run.Jobs, JobLog{
			ID:   m[1],
			Name: strings.ReplaceAll(m[2], "_", " "),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	return run, nil
}

func readRunMeta(path string) (RunMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunMeta{}, err
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return RunMeta{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return meta, nil
}

// CollectRecords scans every job log of every run and returns the combined
// failure records. Unreadable logs are reported through warn (when non-nil)
// and skipped; a report over a partially readable tree is still useful.
// Record order follows the run and job order of the input.
func CollectRecords(runs []Run, rules *RuleSet, warn func(path string, err error)) []FailureRecord {
	var records []FailureRecord
	for _, run := range runs {
		for _, job := range run.Jobs {
			f, err := os.Open(job.Path)
			if err != nil {
				walkLog.Printf("Skipping unreadable log %s: %v", job.Path, err)
				if warn != nil {
					warn(job.Path, err)
				}
				continue
			}
			records = append(records, ScanJobLog(f, rules, run, job)...)
			_ = f.Close()
		}
	}
	return records
}
