// Package navigation computes what is visible on the two-dimensional
// navigation surface: which timeline (or parent/child timeline pair) along
// one axis, and which date along the other.
package navigation

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// TimelineNavPosition is a visible timeline, or a visible parent/child pair
// when the split view is active. It is comparable and serves as the anchor
// key of the timeline axis.
type TimelineNavPosition struct {
	Timeline domain.Timeline
	child    domain.Timeline
	hasChild bool
}

// FullScreen returns the position showing t alone.
func FullScreen(t domain.Timeline) TimelineNavPosition {
	return TimelineNavPosition{Timeline: t}
}

// Split returns the position showing parent with child beside it.
func Split(parent, child domain.Timeline) TimelineNavPosition {
	return TimelineNavPosition{Timeline: parent, child: child, hasChild: true}
}

// Child returns the child timeline when the split view is active.
func (p TimelineNavPosition) Child() (domain.Timeline, bool) {
	return p.child, p.hasChild
}

// ShowChild reports whether a child timeline is shown.
func (p TimelineNavPosition) ShowChild() bool { return p.hasChild }

// VisibleTimelines yields the child (if any) then the parent.
func (p TimelineNavPosition) VisibleTimelines() []domain.Timeline {
	if p.hasChild {
		return []domain.Timeline{p.child, p.Timeline}
	}
	return []domain.Timeline{p.Timeline}
}

// sameTimelines compares by timeline ID, so a rename keeps the position.
func (p TimelineNavPosition) sameTimelines(o TimelineNavPosition) bool {
	return p.Timeline.ID == o.Timeline.ID && p.hasChild == o.hasChild && p.child.ID == o.child.ID
}

func (p TimelineNavPosition) String() string {
	if p.hasChild {
		return fmt.Sprintf("%s|%s", p.Timeline.DisplayName(), p.child.DisplayName())
	}
	return p.Timeline.DisplayName()
}

// VisibleRange returns the date span shown for block under p. With a child
// timeline the span grows to cover every child instance overlapping the
// block; otherwise it is the block itself.
func VisibleRange(p TimelineNavPosition, block calendar.Instance) calendar.DateRange {
	r := block.Range()
	if !p.hasChild {
		return r
	}
	return calendar.NewDateRange(
		p.child.Unit.InstanceFrom(r.Start).Start(),
		p.child.Unit.InstanceFrom(r.End).End(),
	)
}

// NavigationPosition is a fully resolved navigation coordinate.
type NavigationPosition struct {
	TimelineNavPos TimelineNavPosition
	Date           calendar.Date
	DateRange      calendar.DateRange
	TimeBlock      calendar.Instance
}

// NewNavigationPosition resolves the focused block and visible range of
// date under p.
func NewNavigationPosition(p TimelineNavPosition, date calendar.Date) NavigationPosition {
	block := p.Timeline.TimeBlockFrom(date)
	return NavigationPosition{
		TimelineNavPos: p,
		Date:           date,
		DateRange:      VisibleRange(p, block),
		TimeBlock:      block,
	}
}

// TimelineBlock returns the focused block on the parent timeline.
func (p NavigationPosition) TimelineBlock() domain.TimelineBlock {
	return domain.TimelineBlock{TimelineID: p.TimelineNavPos.Timeline.ID, Block: p.TimeBlock}
}

// RangeFor returns the dates p shows on timeline t: the visible range for
// the child, the focused block for anything else.
func (p NavigationPosition) RangeFor(t domain.Timeline) calendar.DateRange {
	if c, ok := p.TimelineNavPos.Child(); ok && c.ID == t.ID {
		return p.DateRange
	}
	return p.TimeBlock.Range()
}

func (p NavigationPosition) String() string {
	return fmt.Sprintf("%s @ %s (%s)", p.TimelineNavPos, p.TimeBlock, p.DateRange)
}

// TimelineStyle classifies how a timeline is drawn for a TimelineNavPosition.
type TimelineStyle int

const (
	StyleHiddenParent TimelineStyle = iota
	StyleParent
	StyleFullScreen
	StyleChild
	StyleHiddenChild
)

func (s TimelineStyle) String() string {
	switch s {
	case StyleHiddenParent:
		return "hidden-parent"
	case StyleParent:
		return "parent"
	case StyleFullScreen:
		return "fullscreen"
	case StyleChild:
		return "child"
	case StyleHiddenChild:
		return "hidden-child"
	}
	return fmt.Sprintf("TimelineStyle(%d)", int(s))
}

// Style classifies t relative to p. Timelines coarser than the shown parent
// are hidden parents; timelines finer than what is shown are hidden children.
func Style(t domain.Timeline, p TimelineNavPosition) TimelineStyle {
	switch {
	case t.ID == p.Timeline.ID:
		if p.hasChild {
			return StyleParent
		}
		return StyleFullScreen
	case p.hasChild && t.ID == p.child.ID:
		return StyleChild
	case t.Compare(p.Timeline) > 0:
		return StyleHiddenParent
	}
	return StyleHiddenChild
}
