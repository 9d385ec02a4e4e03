package cli

import (
	"context"
	"maps"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/navigation"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// frameInterval paces settle animations.
const frameInterval = 16 * time.Millisecond

// navOptions picks where the navigator opens.
type navOptions struct {
	Date       calendar.Date
	TimelineID int64
}

type (
	// timelinesMsg carries a timeline list. stream is set when it came from
	// an observation that should keep being read.
	timelinesMsg struct {
		timelines []domain.Timeline
		stream    <-chan []domain.Timeline
	}

	// tasksLoadedMsg replaces every fetched task list of generation gen.
	tasksLoadedMsg struct {
		gen   int
		tasks map[int64][]*domain.Task
	}

	// taskSnapshotMsg replaces one timeline's task list.
	taskSnapshotMsg struct {
		gen        int
		timelineID int64
		tasks      []*domain.Task
		stream     <-chan []*domain.Task
	}

	// tasksChangedMsg follows a mutation made from the navigator.
	tasksChangedMsg struct{}

	frameMsg struct {
		dt time.Duration
	}

	navErrMsg struct {
		err error
	}
)

// navigatorView owns a navigation.State and draws the blocks it exposes,
// with the tasks the store holds for them.
type navigatorView struct {
	state *SharedState
	opts  navOptions
	cfg   config.Config
	keys  navKeyMap

	nav *navigation.State

	// ranges are the per-timeline date ranges tasks were last requested for.
	// gen advances whenever they change, so results for older ranges are
	// dropped.
	ranges    map[int64]calendar.DateRange
	tasks     map[int64][]*domain.Task
	gen       int
	stopWatch context.CancelFunc

	selected     domain.TimelineBlock
	hasSelection bool
	cursor       int

	ticking bool
	err     error
}

func newNavigatorView(state *SharedState, opts navOptions) *navigatorView {
	return &navigatorView{
		state: state,
		opts:  opts,
		cfg:   state.App.config(),
		keys:  newNavKeyMap(),
		tasks: make(map[int64][]*domain.Task),
	}
}

func (v *navigatorView) ID() ViewID { return ViewNavigator }

func (v *navigatorView) Title() string {
	if v.nav == nil || len(v.nav.Timelines()) == 0 {
		return "Navigator"
	}
	return v.nav.TimelinePosition().String()
}

func (v *navigatorView) ShortHelp() []key.Binding { return v.keys.ShortHelp() }

func (v *navigatorView) Init() tea.Cmd {
	stream := v.state.App.Store.ObserveTimelines(v.state.Ctx)
	return tea.Batch(v.loadTimelines(), waitTimelines(stream))
}

func (v *navigatorView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize()
		return v, v.afterNavChange()

	case timelinesMsg:
		v.applyTimelines(msg.timelines)
		// Deleted timelines drop their tasks, so always refetch.
		v.ranges = nil
		cmd := v.afterNavChange()
		if msg.stream != nil {
			cmd = tea.Batch(cmd, waitTimelines(msg.stream))
		}
		return v, cmd

	case tasksLoadedMsg:
		if msg.gen == v.gen {
			v.tasks = msg.tasks
			v.clampCursor()
		}
		return v, nil

	case taskSnapshotMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		v.tasks[msg.timelineID] = msg.tasks
		v.clampCursor()
		return v, waitTaskSnapshot(msg.gen, msg.timelineID, msg.stream)

	case tasksChangedMsg, refreshViewMsg:
		return v, v.reloadTasks()

	case frameMsg:
		v.ticking = false
		if v.nav != nil {
			v.nav.Advance(msg.dt)
		}
		return v, v.afterNavChange()

	case navErrMsg:
		v.err = msg.err
		return v, outputCmd(formatter.StyleRed.Render("Error: " + msg.err.Error()))

	case tea.KeyMsg:
		if v.nav == nil || len(v.nav.Timelines()) == 0 {
			return v, nil
		}
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *navigatorView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Finer):
		v.fling(true, -1)
	case key.Matches(msg, v.keys.Coarser):
		v.fling(true, 1)
	case key.Matches(msg, v.keys.Earlier):
		v.fling(false, -1)
	case key.Matches(msg, v.keys.Later):
		v.fling(false, 1)

	case key.Matches(msg, v.keys.DragFiner):
		v.drag(true, -1)
	case key.Matches(msg, v.keys.DragCoarser):
		v.drag(true, 1)
	case key.Matches(msg, v.keys.DragEarlier):
		v.drag(false, -1)
	case key.Matches(msg, v.keys.DragLater):
		v.drag(false, 1)
	case key.Matches(msg, v.keys.Release):
		v.nav.ReleaseTimeline(0)
		v.nav.ReleaseDate(0)

	case key.Matches(msg, v.keys.NextBlock):
		v.cycleSelection(1)
	case key.Matches(msg, v.keys.PrevBlock):
		v.cycleSelection(-1)
	case key.Matches(msg, v.keys.Up):
		v.cursor--
		v.clampCursor()
	case key.Matches(msg, v.keys.Down):
		v.cursor++
		v.clampCursor()

	case key.Matches(msg, v.keys.Descend):
		if cmd := v.descend(); cmd != nil {
			return cmd
		}
	case key.Matches(msg, v.keys.Split):
		if !v.hasSelection || !v.nav.TryAnimateToChild(v.selected) {
			return outputCmd(formatter.Dim("No coarser timeline to split into."))
		}
	case key.Matches(msg, v.keys.Today):
		v.nav.SnapToDate(v.state.App.today())
		v.hasSelection = false

	case key.Matches(msg, v.keys.Add):
		return v.startAddTask()
	case key.Matches(msg, v.keys.Edit):
		return v.startEditTask()
	case key.Matches(msg, v.keys.Toggle):
		return v.toggleSelectedTask()
	case key.Matches(msg, v.keys.Delete):
		return v.deleteSelectedTask()
	default:
		return nil
	}
	return v.afterNavChange()
}

// ── navigation ───────────────────────────────────────────────────────────────

func (v *navigatorView) navConfig() navigation.Config {
	c := navigation.DefaultConfig()
	c.ChildFraction = v.cfg.ChildFraction
	c.VelocityThreshold = v.cfg.VelocityThreshold
	return c
}

func (v *navigatorView) applyTimelines(timelines []domain.Timeline) {
	if v.nav == nil {
		v.nav = navigation.NewState(timelines, v.opts.TimelineID, v.opts.Date, v.navConfig())
		v.resize()
		return
	}
	v.nav.SetTimelines(timelines)
}

func (v *navigatorView) resize() {
	if v.nav == nil || v.state.Width <= 0 {
		return
	}
	v.nav.UpdateViewportSize(
		float64(v.state.Width),
		float64(v.state.ContentHeight()),
		v.cfg.TopMargin,
		v.cfg.BottomMargin,
	)
}

// drag moves one axis by one drag step. dir > 0 is coarser on the timeline
// axis and later on the date axis.
func (v *navigatorView) drag(timeline bool, dir float64) {
	w, h := v.nav.ViewportSize()
	if timeline {
		v.nav.DragTimeline(dir * v.cfg.DragStep * w)
		return
	}
	v.nav.DragDate(dir * v.cfg.DragStep * h)
}

// fling drags one step and releases fast enough to reach the next anchor.
func (v *navigatorView) fling(timeline bool, dir float64) {
	v.drag(timeline, dir)
	velocity := dir * v.nav.Config().VelocityThreshold
	if timeline {
		v.nav.ReleaseTimeline(velocity)
		return
	}
	v.nav.ReleaseDate(velocity)
}

// descend opens the selected child block full screen. It returns a status
// command when there is nothing to open.
func (v *navigatorView) descend() tea.Cmd {
	if !v.hasSelection || !v.nav.CanDescend(v.selected) {
		return outputCmd(formatter.Dim("Select a block in the left pane to open it."))
	}
	t, ok := domain.FindTimeline(v.nav.Timelines(), v.selected.TimelineID)
	if !ok {
		return nil
	}
	v.nav.SnapToDate(v.selected.Block.Start())
	v.nav.AnimateToTimeline(navigation.FullScreen(t), 0)
	return nil
}

// afterNavChange keeps the selection valid, keeps frames coming while
// anything animates and refetches tasks when the visible ranges moved.
func (v *navigatorView) afterNavChange() tea.Cmd {
	if v.nav == nil {
		return nil
	}
	v.fixSelection()

	var cmds []tea.Cmd
	if v.nav.Animating() && !v.ticking {
		v.ticking = true
		cmds = append(cmds, frameTick())
	}
	cmds = append(cmds, v.syncTasks())
	return tea.Batch(cmds...)
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{dt: frameInterval} })
}

// displayPosition is the side of the current transition that is more than
// half visible.
func (v *navigatorView) displayPosition() navigation.NavigationPosition {
	a, b, progress := v.nav.ActivePositions()
	if progress >= 0.5 {
		return b
	}
	return a
}

// displayBlocks lists the drawn blocks, child pane first.
func (v *navigatorView) displayBlocks() []domain.TimelineBlock {
	if v.nav == nil || len(v.nav.Timelines()) == 0 {
		return nil
	}
	pos := v.displayPosition()
	var out []domain.TimelineBlock
	for _, t := range pos.TimelineNavPos.VisibleTimelines() {
		for _, in := range t.Unit.InstancesCovering(pos.RangeFor(t)) {
			out = append(out, domain.TimelineBlock{TimelineID: t.ID, Block: in})
		}
	}
	return out
}

func (v *navigatorView) defaultSelection() domain.TimelineBlock {
	pos := v.displayPosition()
	if child, ok := pos.TimelineNavPos.Child(); ok {
		return child.BlockFrom(pos.Date)
	}
	return pos.TimelineBlock()
}

func (v *navigatorView) fixSelection() {
	blocks := v.displayBlocks()
	if len(blocks) == 0 {
		v.hasSelection = false
		return
	}
	if v.hasSelection && indexOfBlock(blocks, v.selected) >= 0 {
		return
	}
	v.selected = v.defaultSelection()
	v.hasSelection = true
	v.cursor = 0
}

func (v *navigatorView) cycleSelection(step int) {
	blocks := v.displayBlocks()
	if len(blocks) == 0 {
		return
	}
	i := indexOfBlock(blocks, v.selected)
	i = ((i+step)%len(blocks) + len(blocks)) % len(blocks)
	v.selected = blocks[i]
	v.hasSelection = true
	v.cursor = 0
}

func indexOfBlock(blocks []domain.TimelineBlock, b domain.TimelineBlock) int {
	for i, x := range blocks {
		if x == b {
			return i
		}
	}
	return -1
}

// ── tasks ────────────────────────────────────────────────────────────────────

// tasksIn returns the fetched tasks of block in display order.
func (v *navigatorView) tasksIn(block domain.TimelineBlock) []*domain.Task {
	var out []*domain.Task
	for _, t := range v.tasks[block.TimelineID] {
		if t.Block == block {
			out = append(out, t)
		}
	}
	return out
}

func (v *navigatorView) selectedTask() *domain.Task {
	if !v.hasSelection {
		return nil
	}
	tasks := v.tasksIn(v.selected)
	if v.cursor < 0 || v.cursor >= len(tasks) {
		return nil
	}
	return tasks[v.cursor]
}

func (v *navigatorView) clampCursor() {
	n := 0
	if v.hasSelection {
		n = len(v.tasksIn(v.selected))
	}
	v.cursor = max(0, min(v.cursor, n-1))
}

// syncTasks resubscribes to the store when the fetch ranges changed.
func (v *navigatorView) syncTasks() tea.Cmd {
	ranges := v.nav.FetchRanges()
	if v.ranges != nil && maps.Equal(ranges, v.ranges) {
		return nil
	}
	v.ranges = ranges
	v.gen++
	if v.stopWatch != nil {
		v.stopWatch()
	}
	ctx, cancel := context.WithCancel(v.state.Ctx)
	v.stopWatch = cancel

	cmds := []tea.Cmd{v.loadTasks()}
	for id, r := range ranges {
		cmds = append(cmds, waitTaskSnapshot(v.gen, id, v.state.App.Store.ObserveTasks(ctx, id, r)))
	}
	return tea.Batch(cmds...)
}

// reloadTasks refetches the current ranges without resubscribing.
func (v *navigatorView) reloadTasks() tea.Cmd {
	if v.ranges == nil {
		return nil
	}
	return v.loadTasks()
}

func (v *navigatorView) loadTasks() tea.Cmd {
	store, ctx := v.state.App.Store, v.state.Ctx
	gen, ranges := v.gen, v.ranges
	return func() tea.Msg {
		out := make(map[int64][]*domain.Task, len(ranges))
		for id, r := range ranges {
			tasks, err := store.Tasks(ctx, id, r)
			if err != nil {
				return navErrMsg{err: err}
			}
			out[id] = tasks
		}
		return tasksLoadedMsg{gen: gen, tasks: out}
	}
}

func (v *navigatorView) loadTimelines() tea.Cmd {
	store, ctx := v.state.App.Store, v.state.Ctx
	return func() tea.Msg {
		timelines, err := store.ListTimelines(ctx)
		if err != nil {
			return navErrMsg{err: err}
		}
		return timelinesMsg{timelines: timelines}
	}
}

func waitTimelines(stream <-chan []domain.Timeline) tea.Cmd {
	return func() tea.Msg {
		timelines, ok := <-stream
		if !ok {
			return nil
		}
		return timelinesMsg{timelines: timelines, stream: stream}
	}
}

func waitTaskSnapshot(gen int, timelineID int64, stream <-chan []*domain.Task) tea.Cmd {
	return func() tea.Msg {
		tasks, ok := <-stream
		if !ok {
			return nil
		}
		return taskSnapshotMsg{gen: gen, timelineID: timelineID, tasks: tasks, stream: stream}
	}
}

func (v *navigatorView) startAddTask() tea.Cmd {
	if !v.hasSelection {
		return nil
	}
	block := v.selected
	heading := formatter.FormatInstance(block.Block)
	if t, ok := domain.FindTimeline(v.nav.Timelines(), block.TimelineID); ok {
		heading = t.DisplayName() + " · " + heading
	}

	fields := &taskFields{}
	app, ctx := v.state.App, v.state.Ctx
	form := newTaskForm(heading, fields)
	return pushView(newWizardView(v.state, "Add task", form, func() tea.Cmd {
		return func() tea.Msg { return applyAddTask(ctx, app, block, fields) }
	}))
}

func (v *navigatorView) startEditTask() tea.Cmd {
	t := v.selectedTask()
	if t == nil {
		return nil
	}
	if t.Occurrence {
		return outputCmd(formatter.StyleYellow.Render("Occurrences of a recurring task are read-only."))
	}

	fields := &taskFields{title: t.Title, notes: t.Notes, repeat: t.Recurrence}
	app, ctx, id := v.state.App, v.state.Ctx, t.ID
	form := newTaskForm(formatter.FormatInstance(t.Block.Block), fields)
	return pushView(newWizardView(v.state, "Edit task", form, func() tea.Cmd {
		return func() tea.Msg { return applyEditTask(ctx, app, id, fields) }
	}))
}

func (v *navigatorView) toggleSelectedTask() tea.Cmd {
	t := v.selectedTask()
	if t == nil {
		return nil
	}
	if t.Occurrence {
		return outputCmd(formatter.StyleYellow.Render("Occurrences of a recurring task are read-only."))
	}
	store, ctx := v.state.App.Store, v.state.Ctx
	id, done := t.ID, !t.IsDone()
	return func() tea.Msg {
		if err := store.SetDone(ctx, id, done); err != nil {
			return navErrMsg{err: err}
		}
		return tasksChangedMsg{}
	}
}

func (v *navigatorView) deleteSelectedTask() tea.Cmd {
	t := v.selectedTask()
	if t == nil {
		return nil
	}
	if t.Occurrence {
		return outputCmd(formatter.StyleYellow.Render("Occurrences of a recurring task are read-only."))
	}
	store, ctx := v.state.App.Store, v.state.Ctx
	id := t.ID
	return func() tea.Msg {
		if err := store.DeleteTask(ctx, id); err != nil {
			return navErrMsg{err: err}
		}
		return tasksChangedMsg{}
	}
}

// close stops task observation.
func (v *navigatorView) close() {
	if v.stopWatch != nil {
		v.stopWatch()
	}
	if v.nav != nil {
		v.nav.Close()
	}
}
