package service

import (
	"fmt"
	"time"
)

// RelativeAge renders the age of createdAt as seen at now ("just now",
// "5 minutes ago", "3 hours ago", "2 days ago"). A zero createdAt yields "".
// Timestamps in the future count as "just now".
func RelativeAge(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	d := now.Sub(createdAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int64(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int64(d/time.Hour))
	default:
		return fmt.Sprintf("%d days ago", int64(d/(24*time.Hour)))
	}
}
