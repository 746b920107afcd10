package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeAge(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"zero elapsed", 0, "just now"},
		{"59 seconds", 59 * time.Second, "just now"},
		{"exactly one minute", time.Minute, "1 minutes ago"},
		{"61 seconds", 61 * time.Second, "1 minutes ago"},
		{"59 minutes 59 seconds", 59*time.Minute + 59*time.Second, "59 minutes ago"},
		{"exactly one hour", time.Hour, "1 hours ago"},
		{"23 hours 59 minutes", 23*time.Hour + 59*time.Minute, "23 hours ago"},
		{"exactly one day", 24 * time.Hour, "1 days ago"},
		{"ten and a half days", 252 * time.Hour, "10 days ago"},
		{"future timestamp", -5 * time.Minute, "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeAge(now.Add(-tt.ago), now))
		})
	}
}

func TestRelativeAge_UnsetTimestamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", RelativeAge(time.Time{}, time.Now()))
}
