package formatter

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// FormatInstance renders a block the way block headings show it:
// "Thu Mar 7, 2024", "Week 10, 2024 (Mar 4 - Mar 10)" or "March 2024".
func FormatInstance(in calendar.Instance) string {
	start := in.Start().Time()
	switch in.Unit() {
	case calendar.Day:
		return start.Format("Mon Jan 2, 2006")
	case calendar.Week:
		y, w := in.ISOWeek()
		return fmt.Sprintf("Week %d, %d (%s - %s)", w, y, start.Format("Jan 2"), in.End().Time().Format("Jan 2"))
	case calendar.Month:
		return start.Format("January 2006")
	}
	return in.String()
}

// CompactInstance is FormatInstance for narrow panes: "Thu 7", "W10", "Mar".
func CompactInstance(in calendar.Instance) string {
	start := in.Start().Time()
	switch in.Unit() {
	case calendar.Day:
		return start.Format("Mon 2")
	case calendar.Week:
		_, w := in.ISOWeek()
		return fmt.Sprintf("W%d", w)
	case calendar.Month:
		return start.Format("Jan")
	}
	return in.String()
}

// FormatRange renders an inclusive date range, dropping the repeated year.
func FormatRange(r calendar.DateRange) string {
	if r.IsEmpty() {
		return "(empty)"
	}
	start, end := r.Start.Time(), r.End.Time()
	switch {
	case r.Start == r.End:
		return start.Format("Jan 2, 2006")
	case start.Year() == end.Year():
		return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}

// FormatTimeline renders "Week (week) #2".
func FormatTimeline(t domain.Timeline) string {
	return fmt.Sprintf("%s %s %s", Bold(t.DisplayName()), Dim("("+t.Unit.String()+")"), Dim(fmt.Sprintf("#%d", t.ID)))
}
