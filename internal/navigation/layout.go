package navigation

import (
	"math"

	"github.com/alexanderramin/tempo/internal/anchor"
	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// TimelineAnchors lays out the timeline axis. timelines must be sorted
// finest first. Timeline i rests at i*width; for i >= 1 the split position
// (timelines[i] with timelines[i-1] as child) rests at (i-childFraction)*width,
// just before the parent's full-screen position.
func TimelineAnchors(timelines []domain.Timeline, width, childFraction float64) []anchor.Anchor[TimelineNavPosition] {
	out := make([]anchor.Anchor[TimelineNavPosition], 0, 2*len(timelines))
	for i, t := range timelines {
		if i >= 1 {
			out = append(out, anchor.Anchor[TimelineNavPosition]{
				Value:    Split(t, timelines[i-1]),
				Position: (float64(i) - childFraction) * width,
			})
		}
		out = append(out, anchor.Anchor[TimelineNavPosition]{
			Value:    FullScreen(t),
			Position: float64(i) * width,
		})
	}
	return out
}

// DateAnchors lays out the date axis around date for position p. The current
// date rests at 0; the dates one block earlier and later rest at the
// distance between the visible ranges' centers, scaled so one viewport height
// spans the average length of the two ranges.
func DateAnchors(p TimelineNavPosition, date calendar.Date, height float64) []anchor.Anchor[calendar.Date] {
	unit := p.Timeline.Unit
	cur := unit.InstanceFrom(date)
	curRange := VisibleRange(p, cur)

	prevDate := shiftDate(unit, date, -1)
	nextDate := shiftDate(unit, date, 1)
	prevRange := VisibleRange(p, cur.Plus(-1))
	nextRange := VisibleRange(p, cur.Plus(1))

	return []anchor.Anchor[calendar.Date]{
		{Value: prevDate, Position: -anchorDistance(curRange, prevRange, height)},
		{Value: date, Position: 0},
		{Value: nextDate, Position: anchorDistance(curRange, nextRange, height)},
	}
}

func anchorDistance(a, b calendar.DateRange, height float64) float64 {
	avg := float64(a.Duration()+b.Duration()) / 2
	if avg <= 0 {
		return height
	}
	return math.Abs(b.Center()-a.Center()) * height / avg
}

// shiftDate moves d by n units, keeping the day of week or day of month
// where the target period allows it.
func shiftDate(u calendar.TimeUnit, d calendar.Date, n int) calendar.Date {
	switch u {
	case calendar.Week:
		return d.AddDays(7 * n)
	case calendar.Month:
		return d.AddMonths(n)
	}
	return d.AddDays(n)
}

// nearestTimeline returns the timeline in sorted whose granularity is
// closest to target. Ties go to the finer timeline.
func nearestTimeline(sorted []domain.Timeline, target domain.Timeline) domain.Timeline {
	best := sorted[0]
	bestDist := unitDistance(best.Unit, target.Unit)
	for _, t := range sorted[1:] {
		if d := unitDistance(t.Unit, target.Unit); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func unitDistance(a, b calendar.TimeUnit) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func timelineIndex(sorted []domain.Timeline, id int64) int {
	for i, t := range sorted {
		if t.ID == id {
			return i
		}
	}
	return -1
}
