package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/navigation"
	"github.com/alexanderramin/tempo/internal/teatest"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestNavigator opens the TUI on app at opts and drains its startup
// loads.
func newTestNavigator(t *testing.T, app *App, opts navOptions) *teatest.Driver {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if opts.Date == (calendar.Date{}) {
		opts.Date = mar7
	}
	d := teatest.New(t, newAppModel(ctx, app, opts), teatest.WithSize(120, 40))
	d.DrainInit()
	t.Cleanup(func() { d.Model.(appModel).close() })

	require.NotNil(t, navigatorOf(d).nav, "timelines loaded during init")
	return d
}

func navigatorOf(d *teatest.Driver) *navigatorView {
	return d.Model.(appModel).viewStack[0].(*navigatorView)
}

func activeViewID(d *teatest.Driver) ViewID {
	m := d.Model.(appModel)
	return m.activeView().ID()
}

// settle delivers animation frames until the surface comes to rest.
func settle(t *testing.T, d *teatest.Driver) {
	t.Helper()
	nav := navigatorOf(d).nav
	d.SendUntil(frameMsg{dt: time.Second}, func() bool { return !nav.Animating() }, 20)
}

func timelines() (day, week, month domain.Timeline) {
	tls := testutil.SeededTimelines()
	return tls[0], tls[1], tls[2]
}

func TestNavigator_OpensOnFinestTimeline(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})
	day, _, _ := timelines()

	nav := navigatorOf(d)
	assert.Equal(t, navigation.FullScreen(day), nav.nav.TimelinePosition())
	assert.Equal(t, mar7, nav.nav.Date())
	assert.True(t, nav.hasSelection)
	assert.Equal(t, testutil.DayBlock(mar7), nav.selected)

	view := d.View()
	assert.Contains(t, view, "tempo")
	assert.Contains(t, view, "DAY")
	assert.Contains(t, view, "Thu Mar 7, 2024")
	assert.Contains(t, view, "Today")
}

func TestNavigator_OpensOnRequestedTimeline(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{TimelineID: testutil.MonthTimelineID})
	_, _, month := timelines()

	assert.Equal(t, navigation.FullScreen(month), navigatorOf(d).nav.TimelinePosition())
	assert.Contains(t, d.View(), "March 2024")
}

func TestNavigator_TimelineKeysStepThroughSplit(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})
	day, week, _ := timelines()
	nav := navigatorOf(d).nav

	d.PressKey('l')
	assert.True(t, nav.Animating())
	settle(t, d)
	assert.Equal(t, navigation.Split(week, day), nav.TimelinePosition())
	view := d.View()
	assert.Contains(t, view, "Week|Day")
	assert.Contains(t, view, "WEEK")
	assert.Contains(t, view, "Mon Mar 4, 2024")
	assert.Contains(t, view, "Sun Mar 10, 2024")

	d.PressKey('l')
	settle(t, d)
	assert.Equal(t, navigation.FullScreen(week), nav.TimelinePosition())

	d.PressKey('h')
	settle(t, d)
	d.PressKey('h')
	settle(t, d)
	assert.Equal(t, navigation.FullScreen(day), nav.TimelinePosition())

	// Already on the finest timeline.
	d.PressKey('h')
	settle(t, d)
	assert.Equal(t, navigation.FullScreen(day), nav.TimelinePosition())
}

func TestNavigator_DateKeys(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})
	nav := navigatorOf(d).nav

	d.PressKey('j')
	settle(t, d)
	assert.Equal(t, mar7.AddDays(1), nav.Date())
	assert.Contains(t, d.View(), "Fri Mar 8, 2024")
	assert.Contains(t, d.View(), "Tomorrow")

	d.PressKey('k')
	settle(t, d)
	d.PressKey('k')
	settle(t, d)
	assert.Equal(t, mar7.AddDays(-1), nav.Date())

	d.PressKey('t')
	assert.Equal(t, mar7, nav.Date())
	assert.Equal(t, testutil.DayBlock(mar7), navigatorOf(d).selected)
}

func TestNavigator_DragAndRelease(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})
	day, week, _ := timelines()
	nav := navigatorOf(d).nav

	// A short drag falls back to where it started.
	d.PressKey('L')
	assert.False(t, nav.Settled())
	assert.Contains(t, d.View(), "→")
	d.PressKey('.')
	settle(t, d)
	assert.Equal(t, navigation.FullScreen(day), nav.TimelinePosition())
	assert.True(t, nav.Settled())

	// A long one lands on the nearest anchor.
	d.PressKey('L')
	d.PressKey('L')
	d.PressKey('L')
	d.PressKey('.')
	settle(t, d)
	assert.Equal(t, navigation.Split(week, day), nav.TimelinePosition())
}

func TestNavigator_SelectionAndDescend(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})
	day, week, _ := timelines()
	v := navigatorOf(d)

	d.PressKey('c')
	settle(t, d)
	require.Equal(t, navigation.Split(week, day), v.nav.TimelinePosition())
	assert.Equal(t, testutil.DayBlock(mar7), v.selected, "child block at the date")

	d.PressTab()
	assert.Equal(t, testutil.DayBlock(mar7.AddDays(1)), v.selected)
	d.PressShiftTab()
	d.PressShiftTab()
	assert.Equal(t, testutil.DayBlock(mar7.AddDays(-1)), v.selected)

	d.PressEnter()
	settle(t, d)
	assert.Equal(t, navigation.FullScreen(day), v.nav.TimelinePosition())
	assert.Equal(t, mar7.AddDays(-1), v.nav.Date())

	// Nothing to open without a child pane.
	d.PressEnter()
	assert.Contains(t, d.View(), "Select a block in the left pane to open it.")
}

func TestNavigator_SplitOnCoarsestTimeline(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{TimelineID: testutil.MonthTimelineID})

	d.PressKey('c')
	assert.False(t, navigatorOf(d).nav.Animating())
	assert.Contains(t, d.View(), "No coarser timeline to split into.")

	// Status output clears on the next key.
	d.PressKey('j')
	assert.NotContains(t, d.View(), "No coarser timeline")
}

func TestNavigator_ShowsAndTogglesTasks(t *testing.T) {
	app := testApp(t)
	rent := seedTask(t, app, "pay rent", testutil.DayBlock(mar7))
	seedTask(t, app, "water plants", testutil.DayBlock(mar7))
	seedTask(t, app, "tomorrow's task", testutil.DayBlock(mar7.AddDays(1)))

	d := newTestNavigator(t, app, navOptions{})
	v := navigatorOf(d)

	view := d.View()
	assert.Contains(t, view, "pay rent")
	assert.Contains(t, view, "water plants")
	assert.NotContains(t, view, "tomorrow's task")
	require.NotNil(t, v.selectedTask())
	assert.Equal(t, rent.ID, v.selectedTask().ID)

	d.PressSpace()
	got, err := app.Store.GetTask(context.Background(), rent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskDone, got.Status)
	assert.True(t, v.selectedTask().IsDone(), "navigator reloaded")

	d.PressSpace()
	got, err = app.Store.GetTask(context.Background(), rent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTodo, got.Status)

	d.PressDown()
	assert.Equal(t, "water plants", v.selectedTask().Title)
	d.PressDown()
	assert.Equal(t, "water plants", v.selectedTask().Title, "cursor stays on the last task")
	d.PressUp()
	assert.Equal(t, "pay rent", v.selectedTask().Title)

	d.PressKey('j')
	settle(t, d)
	assert.Contains(t, d.View(), "tomorrow's task")
}

func TestNavigator_DeleteTask(t *testing.T) {
	app := testApp(t)
	task := seedTask(t, app, "obsolete", testutil.DayBlock(mar7))

	d := newTestNavigator(t, app, navOptions{})
	require.Contains(t, d.View(), "obsolete")

	d.PressKey('d')
	_, err := app.Store.GetTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, d.View(), "obsolete")
	assert.Nil(t, navigatorOf(d).selectedTask())

	// Nothing selected, nothing happens.
	d.PressKey('d')
	d.PressSpace()
}

func TestNavigator_OccurrencesAreReadOnly(t *testing.T) {
	app := testApp(t)
	src := seedTask(t, app, "stretch", testutil.DayBlock(mar7.AddDays(-1)), testutil.WithRecurrence("FREQ=DAILY;COUNT=3"))

	d := newTestNavigator(t, app, navOptions{})
	v := navigatorOf(d)
	occ := v.selectedTask()
	require.NotNil(t, occ)
	assert.True(t, occ.Occurrence)
	assert.Contains(t, d.View(), "↻")

	d.PressSpace()
	assert.Contains(t, d.View(), "Occurrences of a recurring task are read-only.")
	d.PressKey('d')
	assert.Contains(t, d.View(), "Occurrences of a recurring task are read-only.")

	_, err := app.Store.GetTask(context.Background(), src.ID)
	assert.NoError(t, err)
}

func TestNavigator_AddTaskFormCancels(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})

	d.PressKey('a')
	require.Equal(t, ViewForm, activeViewID(d))
	view := d.View()
	assert.Contains(t, view, "Add task")
	assert.Contains(t, view, "Title")
	assert.Contains(t, view, "Day · Thu Mar 7, 2024")

	// q belongs to the form while it is open.
	d.PressKey('q')
	assert.False(t, d.Quitting)

	d.PressEsc()
	assert.Equal(t, ViewNavigator, activeViewID(d))
	assert.Contains(t, d.View(), "Cancelled.")
}

func TestNavigator_EditTaskFormPrefills(t *testing.T) {
	app := testApp(t)
	seedTask(t, app, "draft report", testutil.DayBlock(mar7))
	d := newTestNavigator(t, app, navOptions{})

	d.PressKey('e')
	require.Equal(t, ViewForm, activeViewID(d))
	assert.Contains(t, d.View(), "Edit task")
	assert.Contains(t, d.View(), "draft report")

	d.PressEsc()
	assert.Equal(t, ViewNavigator, activeViewID(d))
}

func TestNavigator_TimelineListChanges(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})
	_, week, month := timelines()
	nav := navigatorOf(d).nav

	d.Send(timelinesMsg{timelines: []domain.Timeline{week, month}})
	assert.Equal(t, navigation.FullScreen(week), nav.TimelinePosition())
	assert.Equal(t, testutil.WeekBlock(mar7), navigatorOf(d).selected)
	assert.Contains(t, d.View(), "Week 10, 2024")

	d.Send(timelinesMsg{})
	assert.Contains(t, d.View(), "No timelines.")
	d.PressKey('l')
	assert.False(t, nav.Animating(), "keys are ignored without timelines")
}

func TestNavigator_DropsStaleTaskLoads(t *testing.T) {
	app := testApp(t)
	seedTask(t, app, "current", testutil.DayBlock(mar7))
	d := newTestNavigator(t, app, navOptions{})
	v := navigatorOf(d)

	stale := &domain.Task{ID: "stale", Title: "stale", Block: testutil.DayBlock(mar7)}
	d.Send(tasksLoadedMsg{gen: v.gen - 1, tasks: map[int64][]*domain.Task{testutil.DayTimelineID: {stale}}})
	d.Send(taskSnapshotMsg{gen: v.gen - 1, timelineID: testutil.DayTimelineID, tasks: []*domain.Task{stale}})

	assert.Contains(t, d.View(), "current")
	assert.NotContains(t, d.View(), "stale")
}

func TestNavigator_CompactHeadingsInNarrowPane(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})

	d.PressKey('c')
	settle(t, d)
	d.Resize(60, 30)

	view := d.View()
	assert.Contains(t, view, "Thu 7")
	assert.Contains(t, view, "Week 10, 2024")
}

func TestNavigator_Quit(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})

	d.PressKey('q')
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())
}

func TestNavigator_CtrlCQuitsFromForm(t *testing.T) {
	d := newTestNavigator(t, testApp(t), navOptions{})

	d.PressKey('a')
	require.Equal(t, ViewForm, activeViewID(d))

	d.PressCtrlC()
	assert.True(t, d.Quitting)
}
