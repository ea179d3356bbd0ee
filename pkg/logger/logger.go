// Package logger provides namespaced debug logging gated by the DEBUG
// environment variable, in the style of the npm debug package.
//
// Each logger has a name like "cli:report" or "cilog:scanner". Output is
// enabled when DEBUG matches the name: DEBUG=* enables everything,
// DEBUG=cli:* enables all loggers under the cli namespace, and
// DEBUG=cli:report,cilog:* enables a comma-separated set.
//
// Debug output goes to stderr and is intended for developers; user-facing
// messages belong in pkg/console.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Logger writes namespaced debug messages to stderr when enabled.
type Logger struct {
	name    string
	enabled bool
}

// New creates a logger for the given namespace. Enablement is decided once
// at creation time from the DEBUG environment variable.
func New(name string) *Logger {
	return &Logger{
		name:    name,
		enabled: matches(os.Getenv("DEBUG"), name),
	}
}

// matches reports whether the DEBUG spec enables the given logger name.
func matches(spec, name string) bool {
	if spec == "" {
		return false
	}
	for _, pattern := range strings.Split(spec, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if pattern == "*" || pattern == name {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Enabled reports whether this logger will emit output. Use it to guard
// expensive argument construction.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf writes a formatted debug message when the logger is enabled.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprintf(format, args...))
}

// Print writes a debug message when the logger is enabled.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.emit(fmt.Sprint(args...))
}

func (l *Logger) emit(msg string) {
	fmt.Fprintf(os.Stderr, "%s [%s] %s\n", time.Now().Format("15:04:05.000"), l.name, msg)
}
