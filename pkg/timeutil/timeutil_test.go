package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{time.Hour, "1h"},
		{0, "0ms"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}

func TestResolveRelativeDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value string
		want  string
	}{
		{"2024-01-01", "2024-01-01"},
		{"-1d", "2024-03-14"},
		{"-2w", "2024-03-01"},
		{"-1mo", "2024-02-15"},
	}

	for _, tt := range tests {
		got, err := ResolveRelativeDate(tt.value, now)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestResolveRelativeDateInvalid(t *testing.T) {
	now := time.Now()
	for _, value := range []string{"yesterday", "-1y", "2024-13-01", "1d"} {
		_, err := ResolveRelativeDate(value, now)
		assert.Error(t, err, value)
	}
}
