package calendar

import "fmt"

// DateRange is an inclusive interval of dates. A range whose Start is after
// its End is empty. DateRange is an immutable value.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange returns the range [start, end].
func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

// SingleDay returns the one-day range containing d.
func SingleDay(d Date) DateRange {
	return DateRange{Start: d, End: d}
}

// IsEmpty reports whether the range contains no dates.
func (r DateRange) IsEmpty() bool {
	return r.Start.After(r.End)
}

// Duration returns the number of days in the range, 0 when empty.
func (r DateRange) Duration() int {
	if r.IsEmpty() {
		return 0
	}
	return int(r.End.EpochDay()-r.Start.EpochDay()) + 1
}

// Contains reports whether d lies inside the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// ContainsRange reports whether other lies entirely inside r. The empty
// range is contained in every range.
func (r DateRange) ContainsRange(other DateRange) bool {
	if other.IsEmpty() {
		return true
	}
	return r.Contains(other.Start) && r.Contains(other.End)
}

// Overlaps reports whether the two ranges share at least one date.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Intersection(other).IsEmpty()
}

// Union returns the smallest range covering both ranges. Empty operands
// are ignored.
func (r DateRange) Union(other DateRange) DateRange {
	switch {
	case r.IsEmpty():
		return other
	case other.IsEmpty():
		return r
	}
	return DateRange{Start: MinDate(r.Start, other.Start), End: MaxDate(r.End, other.End)}
}

// Intersection returns the dates shared by both ranges. Disjoint ranges
// yield an empty range.
func (r DateRange) Intersection(other DateRange) DateRange {
	return DateRange{Start: MaxDate(r.Start, other.Start), End: MinDate(r.End, other.End)}
}

// Center returns the midpoint of the range in fractional epoch days.
func (r DateRange) Center() float64 {
	return float64(r.Start.EpochDay()+r.End.EpochDay()) / 2
}

// Expand returns r grown by before days at the start and after days at the end.
func (r DateRange) Expand(before, after int) DateRange {
	return DateRange{Start: r.Start.AddDays(-before), End: r.End.AddDays(after)}
}

// Dates returns every date in the range in order.
func (r DateRange) Dates() []Date {
	n := r.Duration()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Start.AddDays(i))
	}
	return out
}

func (r DateRange) String() string {
	if r.IsEmpty() {
		return "(empty)"
	}
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}
