package domain

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/tempo/internal/calendar"
)

// Timeline is a lane of navigation at one fixed granularity. IDs are
// assigned by the store and never change.
type Timeline struct {
	ID   int64
	Name string
	Unit calendar.TimeUnit
}

// TimeBlockFrom returns the block of this timeline containing d.
func (t Timeline) TimeBlockFrom(d calendar.Date) calendar.Instance {
	return t.Unit.InstanceFrom(d)
}

// BlockFrom returns the TimelineBlock of this timeline containing d.
func (t Timeline) BlockFrom(d calendar.Date) TimelineBlock {
	return TimelineBlock{TimelineID: t.ID, Block: t.TimeBlockFrom(d)}
}

// Compare orders timelines by granularity (finest first), then by ID.
func (t Timeline) Compare(other Timeline) int {
	switch {
	case t.Unit < other.Unit:
		return -1
	case t.Unit > other.Unit:
		return 1
	case t.ID < other.ID:
		return -1
	case t.ID > other.ID:
		return 1
	}
	return 0
}

// DisplayName returns the name, or the unit when the name is blank.
func (t Timeline) DisplayName() string {
	return CoalesceStr(t.Name, t.Unit.String())
}

func (t Timeline) String() string {
	return fmt.Sprintf("%s#%d", t.DisplayName(), t.ID)
}

// SortTimelines returns a copy of timelines sorted finest to coarsest.
func SortTimelines(timelines []Timeline) []Timeline {
	out := make([]Timeline, len(timelines))
	copy(out, timelines)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// FindTimeline returns the timeline with the given ID.
func FindTimeline(timelines []Timeline, id int64) (Timeline, bool) {
	for _, t := range timelines {
		if t.ID == id {
			return t, true
		}
	}
	return Timeline{}, false
}

// TimelineBlock is a calendar instance located on a specific timeline. It
// keys task queries and identifies a region of the navigation surface.
type TimelineBlock struct {
	TimelineID int64
	Block      calendar.Instance
}

// Range returns the block's date range.
func (b TimelineBlock) Range() calendar.DateRange {
	return b.Block.Range()
}

func (b TimelineBlock) String() string {
	return fmt.Sprintf("%d:%s", b.TimelineID, b.Block)
}
