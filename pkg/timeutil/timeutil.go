// Package timeutil provides duration formatting and relative date
// resolution shared by the CLI commands.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeDatePattern matches delta expressions like -1d, -2w, -3mo.
var relativeDatePattern = regexp.MustCompile(`^-(\d+)(d|w|mo)$`)

// FormatDuration renders a duration in a compact human form, e.g.
// "2h 15m" or "45s". Sub-second durations render as milliseconds.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	d = d.Round(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 && hours == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// ResolveRelativeDate converts a date argument to an absolute YYYY-MM-DD
// string. Absolute dates pass through after validation; delta expressions
// (-1d, -1w, -1mo) resolve against the supplied reference time.
func ResolveRelativeDate(value string, now time.Time) (string, error) {
	if m := relativeDatePattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("invalid delta %q: %w", value, err)
		}
		var resolved time.Time
		switch m[2] {
		case "d":
			resolved = now.AddDate(0, 0, -n)
		case "w":
			resolved = now.AddDate(0, 0, -n*7)
		case "mo":
			resolved = now.AddDate(0, -n, 0)
		}
		return resolved.Format("2006-01-02"), nil
	}

	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", fmt.Errorf("expected YYYY-MM-DD or delta like -1d, -1w, -1mo: %w", err)
	}
	return value, nil
}
