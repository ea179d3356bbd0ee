// Package envutil provides helpers for reading configuration from
// environment variables with validation and defaults.
package envutil

import (
	"os"
	"strconv"

	"github.com/sammayer/ci-log-processor/pkg/logger"
)

// GetIntFromEnv reads an integer from the named environment variable.
// It returns the fallback when the variable is unset, not a valid integer,
// or outside the [min, max] range. Invalid values are reported through the
// supplied debug logger so misconfiguration is diagnosable.
func GetIntFromEnv(name string, fallback, min, max int, log *logger.Logger) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid %s value %q, using default %d: %v", name, raw, fallback, err)
		return fallback
	}

	if value < min || value > max {
		log.Printf("%s value %d outside range [%d, %d], using default %d", name, value, min, max, fallback)
		return fallback
	}

	return value
}
