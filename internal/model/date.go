package model

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for expiry dates.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD value. The second result is false for
// empty or malformed input; callers treat that as "no date".
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// CalendarDay strips the clock from t, keeping the calendar date t has in
// its own location, and returns it as midnight UTC so it compares directly
// with ParseDate results.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
