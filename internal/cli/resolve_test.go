package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTimeline(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	tests := []struct {
		in   string
		want int64
	}{
		{"2", testutil.WeekTimelineID},
		{"month", testutil.MonthTimelineID},
		{"  DAY ", testutil.DayTimelineID},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := resolveTimeline(ctx, app, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}

	_, err := resolveTimeline(ctx, app, "")
	assert.EqualError(t, err, "timeline is required")
	_, err = resolveTimeline(ctx, app, "9")
	assert.EqualError(t, err, "timeline #9 not found")
}

func TestResolveTimeline_AmbiguousUnit(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	_, err := app.Store.CreateTimeline(ctx, "Sprints", calendar.Week)
	require.NoError(t, err)

	_, err = resolveTimeline(ctx, app, "week")
	assert.EqualError(t, err, "2 timelines have unit week; use a name or ID")

	got, err := resolveTimeline(ctx, app, "sprints")
	require.NoError(t, err)
	assert.Equal(t, "Sprints", got.Name)
}

// seedTaskWithID stores a task under a fixed ID so prefixes are predictable.
func seedTaskWithID(t *testing.T, app *App, id, title string, block domain.TimelineBlock, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(title, block, opts...)
	task.ID = id
	require.NoError(t, app.Store.AddTask(context.Background(), task))
	return task
}

func TestResolveTask(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	seedTaskWithID(t, app, "aaaa1111", "a", testutil.DayBlock(mar7))
	b := seedTaskWithID(t, app, "bbbb2222", "b", testutil.DayBlock(mar7), testutil.WithRecurrence("FREQ=DAILY;COUNT=3"))

	got, err := resolveTask(ctx, app, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)

	occ, err := resolveTask(ctx, app, "bbbb2222@2024-03-08")
	require.NoError(t, err)
	assert.True(t, occ.Occurrence)

	got, err = resolveTask(ctx, app, "bbbb")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID, "occurrences do not make a prefix ambiguous")

	got, err = resolveTask(ctx, app, "aa")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)

	_, err = resolveTask(ctx, app, "zzz")
	assert.EqualError(t, err, `task not found: "zzz"`)

	_, err = resolveTask(ctx, app, " ")
	assert.EqualError(t, err, "task ID is required")
}

func TestResolveTask_AmbiguousPrefix(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	seedTaskWithID(t, app, "cafe0001", "a", testutil.DayBlock(mar7))
	seedTaskWithID(t, app, "cafe0002", "b", testutil.WeekBlock(mar7))

	_, err := resolveTask(ctx, app, "cafe")
	assert.EqualError(t, err, `task ID prefix "cafe" is ambiguous (2 matches)`)

	got, err := resolveTask(ctx, app, "cafe0002")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
}

func TestResolveTask_PrefixOutsideSearchWindow(t *testing.T) {
	app := testApp(t)
	far := mar7.AddDays(2 * prefixSearchDays)
	seedTaskWithID(t, app, "feed0001", "far away", testutil.DayBlock(far))

	_, err := resolveTask(context.Background(), app, "feed")
	assert.Error(t, err)

	got, err := resolveTask(context.Background(), app, "feed0001")
	require.NoError(t, err, "full IDs resolve regardless of date")
	assert.Equal(t, "far away", got.Title)
}
