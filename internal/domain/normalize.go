package domain

import (
	"strings"
	"time"
)

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for camp names and user display names.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DateOnly truncates t to midnight UTC of its calendar date.
// Camp and day dates carry no time-of-day or zone.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
