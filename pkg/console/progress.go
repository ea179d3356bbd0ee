package console

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/sammayer/ci-log-processor/pkg/logger"
)

var progressLog = logger.New("console:progress")

// ProgressBar tracks item counts (runs, job logs) during downloads.
// In a terminal it renders a gradient bar; otherwise it falls back to a
// plain "n/m" text counter suitable for CI logs.
type ProgressBar struct {
	progress progress.Model
	total    int64
	current  int64
}

// NewProgressBar creates a progress bar for the given total item count.
func NewProgressBar(total int64) *ProgressBar {
	progressLog.Printf("Creating progress bar: total=%d items", total)
	prog := progress.New(
		progress.WithScaledGradient("#BD93F9", "#8BE9FD"),
		progress.WithWidth(40),
	)
	prog.EmptyColor = "#6272A4"

	return &ProgressBar{
		progress: prog,
		total:    total,
	}
}

// Update records the current completed count and returns the rendered bar.
func (p *ProgressBar) Update(current int64) string {
	p.current = current

	if p.total == 0 {
		if IsStderrTerminal() {
			return p.progress.ViewAs(1.0)
		}
		return "0/0"
	}

	percent := float64(current) / float64(p.total)
	if !IsStderrTerminal() {
		return fmt.Sprintf("%d/%d (%d%%)", current, p.total, int(percent*100))
	}
	return p.progress.ViewAs(percent)
}
