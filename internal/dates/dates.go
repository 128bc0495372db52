// Package dates parses the loosely formatted publication dates found on
// product pages.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoDate is returned when the input carries no recognizable year.
var ErrNoDate = errors.New("no date found")

// year, optional month, optional day separated by "/", "-", "." or CJK units.
var datePattern = regexp.MustCompile(`(\d{4})\s*(?:[/\-.年]\s*(\d{1,2})\s*(?:[/\-.月]\s*(\d{1,2})\s*日?)?)?`)

// Parse extracts a date from s. Missing months default to January and missing
// days default to defaultDay, clamped to the length of the month.
// The result is midnight UTC.
func Parse(s string, defaultDay int) (time.Time, error) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, ErrNoDate)
	}

	year, _ := strconv.Atoi(m[1])
	month := 1
	if m[2] != "" {
		month, _ = strconv.Atoi(m[2])
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("parsing %q: month %d out of range", s, month)
	}

	day := defaultDay
	if m[3] != "" {
		day, _ = strconv.Atoi(m[3])
	}
	last := daysIn(year, time.Month(month))
	if day < 1 || (m[3] != "" && day > last) {
		return time.Time{}, fmt.Errorf("parsing %q: day %d out of range", s, day)
	}
	if day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
