package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the storage and API format for calendar dates.
	DateLayout = "2006-01-02"

	// CompactDateLayout is the day-month-year form accepted by older clients.
	CompactDateLayout = "02012006"
)

// DateOf returns the calendar date of t, in t's location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date in DateLayout or CompactDateLayout.
func ParseDate(s string) (time.Time, error) {
	layout := DateLayout
	if len(s) == len(CompactDateLayout) {
		layout = CompactDateLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate formats a calendar date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
