// Package calendar works with local calendar dates. A date is represented as
// a time.Time at 00:00 UTC whose year, month and day are the local calendar
// date, so day arithmetic never sees time-of-day or daylight-saving shifts.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// KeyLayout is the canonical textual form of a date.
const KeyLayout = "2006-01-02"

// MaxRangeDays bounds Range so a single read cannot ask for an unbounded
// number of days.
const MaxRangeDays = 366

var parseLayouts = []string{
	KeyLayout,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
}

// Day normalizes t to its calendar date in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date from its parts.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the local calendar date of now.
func Today(now time.Time) time.Time {
	return Day(now.Local())
}

// Key returns the canonical key for the calendar date of t.
func Key(t time.Time) string {
	return Day(t).Format(KeyLayout)
}

// Parse reads a date in one of the accepted spellings and returns the
// normalized calendar date. RFC3339 timestamps keep the date in their own
// offset.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// Canonical rewrites a date key into its canonical spelling.
func Canonical(key string) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return Key(t), nil
}

// DaysBetween returns the whole number of days from a to b (negative when b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / 86400)
}

// AddDays steps a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// Range returns every date from start to end inclusive, ascending.
func Range(start, end time.Time) ([]time.Time, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s is before start %s", Key(end), Key(start))
	}
	n := DaysBetween(start, end) + 1
	if n > MaxRangeDays {
		return nil, fmt.Errorf("range of %d days exceeds %d", n, MaxRangeDays)
	}
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates, nil
}

// WeekOf returns Monday through Sunday of the week containing ref.
func WeekOf(ref time.Time) []time.Time {
	ref = Day(ref)
	offset := int(ref.Weekday()) - 1
	if offset < 0 {
		offset = 6 // Sunday
	}
	monday := ref.AddDate(0, 0, -offset)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// MonthDays returns every date of a month. month0 is zero-based (0 = January).
func MonthDays(year, month0 int) ([]time.Time, error) {
	if month0 < 0 || month0 > 11 {
		return nil, fmt.Errorf("month %d out of range 0..11", month0)
	}
	first := Date(year, time.Month(month0+1), 1)
	last := first.AddDate(0, 1, -1)
	return Range(first, last)
}
