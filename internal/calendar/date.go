// Package calendar implements the date arithmetic used for navigation:
// civil dates, inclusive date ranges, and day/week/month time units.
//
// Weeks are ISO weeks starting on Monday everywhere in this package. The
// locale's first day of the week is never consulted, so anchor layout and
// block boundaries are deterministic.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the textual form of a Date.
const DateLayout = "2006-01-02"

// Date is a civil date without a time of day or zone. The zero value is
// 1970-01-01. Dates are comparable with ==.
type Date struct {
	day int64 // days since 1970-01-01
}

// NewDate returns the date for the given year, month and day. Out-of-range
// values are normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date{day: floorDiv(u.Unix(), secondsPerDay)}
}

// DateFromEpochDay returns the date n days after 1970-01-01.
func DateFromEpochDay(n int64) Date {
	return Date{day: n}
}

// Today returns the current local date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

const secondsPerDay = 24 * 60 * 60

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(d.day*secondsPerDay, 0).UTC()
}

// EpochDay returns the number of days since 1970-01-01.
func (d Date) EpochDay() int64 { return d.day }

func (d Date) Year() int             { return d.Time().Year() }
func (d Date) Month() time.Month     { return d.Time().Month() }
func (d Date) Day() int              { return d.Time().Day() }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// ISOWeek returns the ISO 8601 year and week number of the date.
func (d Date) ISOWeek() (year, week int) { return d.Time().ISOWeek() }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{day: d.day + int64(n)}
}

// AddMonths returns d shifted by n months. When the target month is shorter
// the day of month is clamped to its last day, so 2020-01-31 plus one month
// is 2020-02-29.
func (d Date) AddMonths(n int) Date {
	t := d.Time()
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

// DaysUntil returns the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.day - d.day)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.day < other.day:
		return -1
	case d.day > other.day:
		return 1
	}
	return 0
}

func (d Date) Before(other Date) bool { return d.day < other.day }
func (d Date) After(other Date) bool  { return d.day > other.day }

// MinDate returns the earlier of a and b.
func MinDate(a, b Date) Date {
	if b.day < a.day {
		return b
	}
	return a
}

// MaxDate returns the later of a and b.
func MaxDate(a, b Date) Date {
	if b.day > a.day {
		return b
	}
	return a
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}
