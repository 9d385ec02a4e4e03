package navigation

import (
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/tempo/internal/anchor"
	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// DefaultChildFraction is the share of the viewport width taken by the
// child pane of a split view.
const DefaultChildFraction = 0.3

// Config tunes a State.
type Config struct {
	ChildFraction     float64
	VelocityThreshold float64
	Stiffness         float64
}

// DefaultConfig returns the navigator defaults.
func DefaultConfig() Config {
	ax := anchor.DefaultConfig()
	return Config{
		ChildFraction:     DefaultChildFraction,
		VelocityThreshold: ax.VelocityThreshold,
		Stiffness:         ax.Stiffness,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.ChildFraction <= 0 || c.ChildFraction >= 1 {
		c.ChildFraction = def.ChildFraction
	}
	if c.VelocityThreshold <= 0 {
		c.VelocityThreshold = def.VelocityThreshold
	}
	if c.Stiffness <= 0 {
		c.Stiffness = def.Stiffness
	}
	return c
}

func (c Config) axis() anchor.Config {
	ax := anchor.DefaultConfig()
	ax.VelocityThreshold = c.VelocityThreshold
	ax.Stiffness = c.Stiffness
	return ax
}

type layoutKey struct {
	timeline TimelineNavPosition
	date     calendar.Date
}

// State owns the timeline axis and the date axis of the navigation surface.
// It is the single source of truth for what is visible. A State is confined
// to one goroutine and carries no locks.
type State struct {
	cfg       Config
	timelines []domain.Timeline // finest first

	width, height           float64
	topMargin, bottomMargin float64

	timelineAxis *anchor.Axis[TimelineNavPosition]
	dateAxis     *anchor.Axis[calendar.Date]

	// layout records what the date anchors were last built for.
	layout layoutKey
	closed bool
}

// NewState returns a state resting on the timeline with initialTimelineID
// (or the finest timeline when it is unknown) at initialDate. Anchors are
// empty until the first UpdateViewportSize.
func NewState(timelines []domain.Timeline, initialTimelineID int64, initialDate calendar.Date, cfg Config) *State {
	cfg = cfg.normalized()
	sorted := domain.SortTimelines(timelines)

	var initial TimelineNavPosition
	if t, ok := domain.FindTimeline(sorted, initialTimelineID); ok {
		initial = FullScreen(t)
	} else if len(sorted) > 0 {
		initial = FullScreen(sorted[0])
	}

	return &State{
		cfg:          cfg,
		timelines:    sorted,
		timelineAxis: anchor.New(initial, cfg.axis()),
		dateAxis:     anchor.New(initialDate, cfg.axis()),
		layout:       layoutKey{timeline: initial, date: initialDate},
	}
}

// Timelines returns the timelines, finest first.
func (s *State) Timelines() []domain.Timeline {
	out := make([]domain.Timeline, len(s.timelines))
	copy(out, s.timelines)
	return out
}

// Config returns the effective configuration.
func (s *State) Config() Config { return s.cfg }

// ViewportSize returns the last reported width and height.
func (s *State) ViewportSize() (width, height float64) { return s.width, s.height }

// Date returns the settled date.
func (s *State) Date() calendar.Date { return s.dateAxis.Current() }

// TimelinePosition returns the settled timeline position.
func (s *State) TimelinePosition() TimelineNavPosition { return s.timelineAxis.Current() }

// TimelineOffset returns how far the timeline axis is dragged away from its
// settled anchor.
func (s *State) TimelineOffset() float64 { return s.timelineAxis.OffsetToCurrent() }

// DateOffset returns how far the date axis is dragged away from its settled
// anchor.
func (s *State) DateOffset() float64 { return s.dateAxis.OffsetToCurrent() }

// TimelineAnchors returns the timeline axis anchors in position order.
func (s *State) TimelineAnchors() []anchor.Anchor[TimelineNavPosition] {
	return s.timelineAxis.Anchors()
}

// DateAnchors returns the date axis anchors in position order.
func (s *State) DateAnchors() []anchor.Anchor[calendar.Date] {
	return s.dateAxis.Anchors()
}

// Settled reports whether both axes rest on their current anchors.
func (s *State) Settled() bool {
	return s.timelineAxis.IsSettled() && s.dateAxis.IsSettled() && !s.Animating()
}

// Animating reports whether either axis has a settle animation in flight.
func (s *State) Animating() bool {
	return s.timelineAxis.Animating() || s.dateAxis.Animating()
}

// Current returns the settled position.
func (s *State) Current() NavigationPosition {
	return NewNavigationPosition(s.timelineAxis.Current(), s.dateAxis.Current())
}

// PrevDate returns the position one block earlier on the date axis, or the
// current position when there is none.
func (s *State) PrevDate() NavigationPosition {
	nb := s.dateAxis.AdjacentAnchors(s.dateAxis.Current())
	return NewNavigationPosition(s.timelineAxis.Current(), nb.Prev)
}

// NextDate returns the position one block later on the date axis.
func (s *State) NextDate() NavigationPosition {
	nb := s.dateAxis.AdjacentAnchors(s.dateAxis.Current())
	return NewNavigationPosition(s.timelineAxis.Current(), nb.Next)
}

// PrevTimeline returns the finer neighbor on the timeline axis.
func (s *State) PrevTimeline() NavigationPosition {
	nb := s.timelineAxis.AdjacentAnchors(s.timelineAxis.Current())
	return NewNavigationPosition(nb.Prev, s.dateAxis.Current())
}

// NextTimeline returns the coarser neighbor on the timeline axis.
func (s *State) NextTimeline() NavigationPosition {
	nb := s.timelineAxis.AdjacentAnchors(s.timelineAxis.Current())
	return NewNavigationPosition(nb.Next, s.dateAxis.Current())
}

// ActivePositions returns the pair of positions being interpolated between
// and how far along the way the surface is. The timeline axis wins when both
// axes are off their anchors. With both settled the pair is the current
// position twice.
func (s *State) ActivePositions() (a, b NavigationPosition, progress float64) {
	date := s.dateAxis.Current()
	if from, to, p := s.timelineAxis.Progress(); from != to {
		return NewNavigationPosition(from, date), NewNavigationPosition(to, date), p
	}
	tl := s.timelineAxis.Current()
	if from, to, p := s.dateAxis.Progress(); from != to {
		return NewNavigationPosition(tl, from), NewNavigationPosition(tl, to), p
	}
	cur := s.Current()
	return cur, cur, 0
}

// VisibleTimelineBlocks returns the blocks shown by the active positions,
// ordered by timeline then date.
func (s *State) VisibleTimelineBlocks() []domain.TimelineBlock {
	return s.blocks(0, 0)
}

// PrefetchTimelineBlocks is VisibleTimelineBlocks with the top and bottom
// margins applied, so blocks just off screen are loaded ahead of time.
func (s *State) PrefetchTimelineBlocks() []domain.TimelineBlock {
	return s.blocks(s.topMargin, s.bottomMargin)
}

func (s *State) blocks(top, bottom float64) []domain.TimelineBlock {
	if len(s.timelines) == 0 {
		return nil
	}
	a, b, _ := s.ActivePositions()
	seen := make(map[domain.TimelineBlock]bool)
	order := make(map[int64]domain.Timeline)
	var out []domain.TimelineBlock
	for _, p := range []NavigationPosition{a, b} {
		for _, t := range p.TimelineNavPos.VisibleTimelines() {
			order[t.ID] = t
			r := expandByFraction(p.RangeFor(t), top, bottom)
			for _, in := range t.Unit.InstancesCovering(r) {
				tb := domain.TimelineBlock{TimelineID: t.ID, Block: in}
				if !seen[tb] {
					seen[tb] = true
					out = append(out, tb)
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := order[out[i].TimelineID].Compare(order[out[j].TimelineID]); c != 0 {
			return c < 0
		}
		return out[i].Block.Start().Before(out[j].Block.Start())
	})
	return out
}

// FetchRange returns the union of the active positions' visible ranges,
// expanded by the top and bottom margins.
func (s *State) FetchRange() calendar.DateRange {
	a, b, _ := s.ActivePositions()
	return expandByFraction(a.DateRange.Union(b.DateRange), s.topMargin, s.bottomMargin)
}

// FetchRanges returns, per visible timeline, the date range covering its
// prefetch blocks. It is what the task store is queried with.
func (s *State) FetchRanges() map[int64]calendar.DateRange {
	out := make(map[int64]calendar.DateRange)
	for _, tb := range s.PrefetchTimelineBlocks() {
		if r, ok := out[tb.TimelineID]; ok {
			out[tb.TimelineID] = r.Union(tb.Range())
			continue
		}
		out[tb.TimelineID] = tb.Range()
	}
	return out
}

func expandByFraction(r calendar.DateRange, top, bottom float64) calendar.DateRange {
	if r.IsEmpty() || (top <= 0 && bottom <= 0) {
		return r
	}
	d := float64(r.Duration())
	return r.Expand(int(math.Ceil(d*math.Max(0, top))), int(math.Ceil(d*math.Max(0, bottom))))
}

// CanDescend reports whether block is drawn as a child in both active
// positions, which is when tapping it may descend into it.
func (s *State) CanDescend(block domain.TimelineBlock) bool {
	t, ok := domain.FindTimeline(s.timelines, block.TimelineID)
	if !ok {
		return false
	}
	a, b, _ := s.ActivePositions()
	return Style(t, a.TimelineNavPos) == StyleChild && Style(t, b.TimelineNavPos) == StyleChild
}

// SetTimelines replaces the timeline list. A position whose timeline was
// removed moves to the remaining timeline of nearest granularity, the finer
// one on a tie. An empty list leaves both axes without anchors.
func (s *State) SetTimelines(timelines []domain.Timeline) {
	s.timelines = domain.SortTimelines(timelines)
	if len(s.timelines) == 0 {
		s.rebuildTimelineAnchors(s.timelineAxis.Current())
		s.rebuildDateAnchors()
		return
	}

	old := s.timelineAxis.Current()
	heading, animating := s.timelineAxis.Target(), s.timelineAxis.Animating()
	retarget := s.retarget(old)
	s.rebuildTimelineAnchors(retarget)
	if !retarget.sameTimelines(old) {
		s.timelineAxis.SnapTo(retarget)
	}
	if animating {
		if to := s.retarget(heading); to != s.timelineAxis.Target() {
			s.timelineAxis.SettleTo(to, 0)
		}
	}
	s.rebuildDateAnchors()
	s.settleStrandedDate()
}

func (s *State) retarget(p TimelineNavPosition) TimelineNavPosition {
	parent, ok := domain.FindTimeline(s.timelines, p.Timeline.ID)
	if !ok {
		return FullScreen(nearestTimeline(s.timelines, p.Timeline))
	}
	if child, ok := p.Child(); ok {
		i := timelineIndex(s.timelines, parent.ID)
		if i >= 1 && s.timelines[i-1].ID == child.ID {
			return Split(parent, s.timelines[i-1])
		}
	}
	return FullScreen(parent)
}

// UpdateViewportSize records the viewport geometry and the prefetch margin
// fractions, rebuilding the anchors of whichever axis the change affects.
func (s *State) UpdateViewportSize(width, height, topMargin, bottomMargin float64) {
	widthChanged := width != s.width
	heightChanged := height != s.height
	s.width, s.height = width, height
	s.topMargin, s.bottomMargin = math.Max(0, topMargin), math.Max(0, bottomMargin)

	if widthChanged {
		s.rebuildTimelineAnchors(s.timelineAxis.Current())
	}
	if heightChanged {
		s.rebuildDateAnchors()
	}
}

func (s *State) rebuildTimelineAnchors(retarget TimelineNavPosition) {
	if s.width <= 0 || len(s.timelines) == 0 {
		s.timelineAxis.UpdateAnchors(nil, retarget)
		return
	}
	s.timelineAxis.UpdateAnchors(TimelineAnchors(s.timelines, s.width, s.cfg.ChildFraction), retarget)
}

// rebuildDateAnchors lays the date axis out for the timeline axis target, so
// a rebuild during a timeline settle already matches where it will land.
func (s *State) rebuildDateAnchors() {
	tl := s.timelineAxis.Target()
	date := s.dateAxis.Current()
	s.layout = layoutKey{timeline: tl, date: date}
	if s.height <= 0 || len(s.timelines) == 0 {
		s.dateAxis.UpdateAnchors(nil, date)
		return
	}
	s.dateAxis.UpdateAnchors(DateAnchors(tl, date, s.height), date)
}

// sync rebuilds the date anchors once both axes have come to rest on
// something other than what the anchors were built for.
func (s *State) sync() {
	if s.Animating() {
		return
	}
	if (layoutKey{timeline: s.timelineAxis.Target(), date: s.dateAxis.Current()}) == s.layout {
		return
	}
	s.rebuildDateAnchors()
	s.settleStrandedDate()
}

// settleStrandedDate starts the date axis back toward its anchor when a
// rebuild left it off-anchor with nothing moving it.
func (s *State) settleStrandedDate() {
	if !s.dateAxis.IsSettled() && !s.dateAxis.Animating() {
		s.dateAxis.Release(0)
	}
}

// DragTimeline feeds a raw drag delta to the timeline axis and returns the
// part of it that was consumed.
func (s *State) DragTimeline(delta float64) float64 {
	return s.timelineAxis.DispatchRawDelta(delta)
}

// DragDate feeds a raw drag delta to the date axis.
func (s *State) DragDate(delta float64) float64 {
	return s.dateAxis.DispatchRawDelta(delta)
}

// ReleaseTimeline ends a timeline drag and returns where the axis settles.
func (s *State) ReleaseTimeline(velocity float64) TimelineNavPosition {
	target := s.timelineAxis.Release(velocity)
	s.sync()
	return target
}

// ReleaseDate ends a date drag and returns the date the axis settles on.
func (s *State) ReleaseDate(velocity float64) calendar.Date {
	target := s.dateAxis.Release(velocity)
	s.sync()
	return target
}

// SnapToTimeline jumps to p without animating.
func (s *State) SnapToTimeline(p TimelineNavPosition) {
	s.timelineAxis.SnapTo(p)
	s.sync()
}

// AnimateToTimeline settles the timeline axis on p.
func (s *State) AnimateToTimeline(p TimelineNavPosition, velocity float64) {
	s.timelineAxis.SettleTo(p, velocity)
	s.sync()
}

// SnapToDate jumps to date without animating. Any date is accepted; the
// date anchors are rebuilt around it.
func (s *State) SnapToDate(date calendar.Date) {
	s.dateAxis.Cancel()
	s.dateAxis.UpdateAnchors(nil, date)
	s.rebuildDateAnchors()
	s.dateAxis.SnapTo(date)
}

// StepTimeline animates one anchor finer (step < 0) or coarser (step > 0)
// from where the timeline axis is heading. It reports whether there was an
// anchor to move to.
func (s *State) StepTimeline(step int) bool {
	target, ok := stepAnchor(s.timelineAxis, step)
	if ok {
		s.AnimateToTimeline(target, 0)
	}
	return ok
}

// StepDate animates one block earlier (step < 0) or later (step > 0).
func (s *State) StepDate(step int) bool {
	target, ok := stepAnchor(s.dateAxis, step)
	if ok {
		s.dateAxis.SettleTo(target, 0)
		s.sync()
	}
	return ok
}

func stepAnchor[A comparable](ax *anchor.Axis[A], step int) (A, bool) {
	nb := ax.AdjacentAnchors(ax.Target())
	switch {
	case step < 0 && nb.HasPrev:
		return nb.Prev, true
	case step > 0 && nb.HasNext:
		return nb.Next, true
	}
	var zero A
	return zero, false
}

// TryAnimateToChild animates to the split view that shows block's timeline
// as the child, moving the date into block first when it lies elsewhere. It
// returns false when block's timeline is unknown or has no coarser timeline.
func (s *State) TryAnimateToChild(block domain.TimelineBlock) bool {
	i := timelineIndex(s.timelines, block.TimelineID)
	if i < 0 || i+1 >= len(s.timelines) {
		return false
	}
	if !block.Block.Contains(s.dateAxis.Current()) {
		s.SnapToDate(block.Block.Start())
	}
	s.AnimateToTimeline(Split(s.timelines[i+1], s.timelines[i]), 0)
	return true
}

// Advance steps both settle animations by dt and reports whether anything
// is still animating.
func (s *State) Advance(dt time.Duration) bool {
	if s.closed {
		return false
	}
	tDone := s.timelineAxis.Advance(dt)
	dDone := s.dateAxis.Advance(dt)
	if tDone || dDone {
		s.sync()
	}
	return s.Animating()
}

// Close stops both animations where they are. A closed state ignores
// Advance.
func (s *State) Close() {
	s.timelineAxis.Cancel()
	s.dateAxis.Cancel()
	s.closed = true
}
