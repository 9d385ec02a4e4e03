package calendar

import (
	"fmt"
	"strings"
)

// TimeUnit is a navigation granularity. Units are ordered from finest to
// coarsest: Day < Week < Month.
type TimeUnit int

const (
	Day TimeUnit = iota
	Week
	Month
)

// TimeUnits lists every unit from finest to coarsest.
var TimeUnits = []TimeUnit{Day, Week, Month}

func (u TimeUnit) String() string {
	switch u {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	}
	return fmt.Sprintf("TimeUnit(%d)", int(u))
}

// Valid reports whether u is one of the defined units.
func (u TimeUnit) Valid() bool {
	return u >= Day && u <= Month
}

// ParseTimeUnit parses "day", "week" or "month" (case-insensitive).
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "d":
		return Day, nil
	case "week", "w":
		return Week, nil
	case "month", "m":
		return Month, nil
	}
	return 0, fmt.Errorf("unknown time unit %q (want day, week or month)", s)
}

// InstanceFrom returns the unique instance of u that contains d.
func (u TimeUnit) InstanceFrom(d Date) Instance {
	switch u {
	case Day:
		return DayOf(d)
	case Week:
		return WeekOf(d)
	case Month:
		return MonthOf(d)
	}
	panic(fmt.Sprintf("calendar: invalid time unit %d", int(u)))
}

// InstancesCovering returns every instance of u that overlaps r, in order.
func (u TimeUnit) InstancesCovering(r DateRange) []Instance {
	if r.IsEmpty() {
		return nil
	}
	var out []Instance
	for in := u.InstanceFrom(r.Start); !in.Start().After(r.End); in = in.Plus(1) {
		out = append(out, in)
	}
	return out
}
