package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidComparison is returned (or panicked with) when two instances of
// different units are ordered against each other.
var ErrInvalidComparison = errors.New("cannot compare time-unit instances of different units")

// Instance is a concrete occurrence of a TimeUnit: a day, an ISO week or a
// calendar month. It is a tagged variant keyed by unit; the payload is the
// canonical first day of the period (the day itself, the Monday of the ISO
// week, or the first of the month). Instances are immutable and compare
// structurally with ==.
type Instance struct {
	unit  TimeUnit
	start Date
}

// DayOf returns the Day instance for d.
func DayOf(d Date) Instance {
	return Instance{unit: Day, start: d}
}

// WeekOf returns the ISO week (Monday start) containing d.
func WeekOf(d Date) Instance {
	back := (int(d.Weekday()) + 6) % 7
	return Instance{unit: Week, start: d.AddDays(-back)}
}

// ISOWeekInstance returns week number week of ISO year year.
func ISOWeekInstance(year, week int) Instance {
	// January 4th is always in ISO week 1.
	w1 := WeekOf(NewDate(year, time.January, 4))
	return w1.Plus(week - 1)
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) Instance {
	return Instance{unit: Month, start: NewDate(d.Year(), d.Month(), 1)}
}

// MonthInstance returns the given calendar month.
func MonthInstance(year int, month time.Month) Instance {
	return Instance{unit: Month, start: NewDate(year, month, 1)}
}

// Unit returns the instance's tag.
func (in Instance) Unit() TimeUnit { return in.unit }

// Start returns the first day of the instance.
func (in Instance) Start() Date { return in.start }

// End returns the last day of the instance (inclusive).
func (in Instance) End() Date {
	switch in.unit {
	case Day:
		return in.start
	case Week:
		return in.start.AddDays(6)
	case Month:
		return in.start.AddMonths(1).AddDays(-1)
	}
	panic(fmt.Sprintf("calendar: invalid time unit %d", int(in.unit)))
}

// Range returns [Start, End].
func (in Instance) Range() DateRange {
	return DateRange{Start: in.start, End: in.End()}
}

// Contains reports whether d falls inside the instance.
func (in Instance) Contains(d Date) bool {
	return in.Range().Contains(d)
}

// Plus returns the instance shifted by n units of its own kind.
func (in Instance) Plus(n int) Instance {
	switch in.unit {
	case Day:
		return Instance{unit: Day, start: in.start.AddDays(n)}
	case Week:
		return Instance{unit: Week, start: in.start.AddDays(7 * n)}
	case Month:
		return Instance{unit: Month, start: in.start.AddMonths(n)}
	}
	panic(fmt.Sprintf("calendar: invalid time unit %d", int(in.unit)))
}

// Minus is Plus(-n).
func (in Instance) Minus(n int) Instance {
	return in.Plus(-n)
}

// ISOWeek returns the ISO year and week of a Week instance. For other units
// it returns the ISO week of the start day.
func (in Instance) ISOWeek() (year, week int) {
	return in.start.ISOWeek()
}

// YearMonth returns the year and month of the instance's first day.
func (in Instance) YearMonth() (int, time.Month) {
	return in.start.Year(), in.start.Month()
}

// Compare orders two instances of the same unit by start date. Instances of
// different units cannot be ordered and yield ErrInvalidComparison.
func (in Instance) Compare(other Instance) (int, error) {
	if in.unit != other.unit {
		return 0, fmt.Errorf("%w: %s vs %s", ErrInvalidComparison, in.unit, other.unit)
	}
	return in.start.Compare(other.start), nil
}

// Less reports whether in precedes other. It panics when the units differ.
func (in Instance) Less(other Instance) bool {
	c, err := in.Compare(other)
	if err != nil {
		panic(err)
	}
	return c < 0
}

func (in Instance) String() string {
	switch in.unit {
	case Day:
		return in.start.String()
	case Week:
		y, w := in.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Month:
		y, m := in.YearMonth()
		return fmt.Sprintf("%04d-%02d", y, int(m))
	}
	return fmt.Sprintf("Instance(%d, %s)", int(in.unit), in.start)
}

// ParseInstance parses the String form of an instance: 2020-01-31 (day),
// 2020-W05 (ISO week) or 2020-01 (month).
func ParseInstance(s string) (Instance, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "-W") {
		var y, w int
		if _, err := fmt.Sscanf(s, "%d-W%d", &y, &w); err != nil {
			return Instance{}, fmt.Errorf("parsing week %q: %w", s, err)
		}
		if w < 1 || w > ISOWeeksInYear(y) {
			return Instance{}, fmt.Errorf("parsing week %q: week out of range", s)
		}
		return ISOWeekInstance(y, w), nil
	}
	if len(s) == len("2006-01") {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return Instance{}, fmt.Errorf("parsing month %q: %w", s, err)
		}
		return MonthInstance(t.Year(), t.Month()), nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return Instance{}, err
	}
	return DayOf(d), nil
}

// ISOWeeksInYear returns 52 or 53. December 28 always falls in the last ISO
// week of its year.
func ISOWeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// NewInstance builds the instance of unit u whose first day is start. start
// is normalized to the canonical first day of its period.
func NewInstance(u TimeUnit, start Date) Instance {
	return u.InstanceFrom(start)
}
