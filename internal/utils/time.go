package utils

import (
	"math"
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// NowUTC returns current time in UTC, truncated to the second so it survives a
// round-trip through DATETIME columns unchanged.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// ParseDate parses YYYY-MM-DD as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.UTC)
}

// FormatDate formats time to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// DaysInclusive counts calendar days from start to end, both included.
// It returns 0 when either date is missing or invalid, or end precedes start.
func DaysInclusive(start, end string) int {
	s, err := ParseDate(start)
	if err != nil {
		return 0
	}
	e, err := ParseDate(end)
	if err != nil || e.Before(s) {
		return 0
	}
	return int(math.Ceil(e.Sub(s).Hours()/24)) + 1
}
