package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var thursday = calendar.NewDate(2024, time.March, 7)

func newTaskRepo(t *testing.T) *SQLiteTaskRepo {
	t.Helper()
	return NewSQLiteTaskRepo(testutil.NewTestDB(t))
}

func titles(tasks []*domain.Task) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestTaskRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	task := testutil.NewTestTask("plan week", testutil.WeekBlock(thursday),
		testutil.WithNotes("before standup"),
		testutil.WithPosition(3),
		testutil.WithRecurrence("FREQ=WEEKLY;COUNT=4"),
	)
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)
	assert.Equal(t, calendar.WeekOf(thursday), got.Block.Block)
	assert.Equal(t, calendar.Week, got.Block.Block.Unit())
}

func TestTaskRepo_CreateDefaultsStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	task := testutil.NewTestTask("x", testutil.DayBlock(thursday), testutil.WithTaskStatus(""))
	require.NoError(t, repo.Create(ctx, task))
	assert.Equal(t, domain.TaskTodo, task.Status)
}

func TestTaskRepo_GetMissing(t *testing.T) {
	_, err := newTaskRepo(t).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepo_CreateUnknownTimeline(t *testing.T) {
	task := testutil.NewTestTask("orphan", domain.TimelineBlock{TimelineID: 99, Block: calendar.DayOf(thursday)})
	assert.Error(t, newTaskRepo(t).Create(context.Background(), task))
}

func TestTaskRepo_ListInRange(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	for _, tc := range []struct {
		title string
		day   int
		pos   int
	}{
		{"tue-b", 5, 1},
		{"tue-a", 5, 0},
		{"thu", 7, 0},
		{"next-mon", 11, 0},
	} {
		task := testutil.NewTestTask(tc.title, testutil.DayBlock(calendar.NewDate(2024, time.March, tc.day)),
			testutil.WithPosition(tc.pos))
		require.NoError(t, repo.Create(ctx, task))
	}
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask("weekly", testutil.WeekBlock(thursday))))

	week := calendar.WeekOf(thursday).Range()
	got, err := repo.ListInRange(ctx, testutil.DayTimelineID, week)
	require.NoError(t, err)
	assert.Equal(t, []string{"tue-a", "tue-b", "thu"}, titles(got))

	// A week block overlaps any range that touches it.
	got, err = repo.ListInRange(ctx, testutil.WeekTimelineID, calendar.SingleDay(calendar.NewDate(2024, time.March, 10)))
	require.NoError(t, err)
	assert.Equal(t, []string{"weekly"}, titles(got))

	got, err = repo.ListInRange(ctx, testutil.DayTimelineID, calendar.NewDateRange(thursday, thursday.AddDays(-1)))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTaskRepo_ListRecurring(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	require.NoError(t, repo.Create(ctx, testutil.NewTestTask("once", testutil.DayBlock(thursday))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask("daily", testutil.DayBlock(thursday),
		testutil.WithRecurrence("FREQ=DAILY"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask("later", testutil.DayBlock(thursday.AddDays(30)),
		testutil.WithRecurrence("FREQ=DAILY"))))

	got, err := repo.ListRecurring(ctx, testutil.DayTimelineID, thursday.AddDays(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"daily"}, titles(got))
}

func TestTaskRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	task := testutil.NewTestTask("draft", testutil.DayBlock(thursday))
	require.NoError(t, repo.Create(ctx, task))

	task.Title = "final"
	task.Block = testutil.MonthBlock(thursday)
	task.UpdatedAt = task.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, calendar.MonthInstance(2024, time.March), got.Block.Block)
	assert.Equal(t, testutil.MonthTimelineID, got.Block.TimelineID)

	missing := testutil.NewTestTask("ghost", testutil.DayBlock(thursday))
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
}

func TestTaskRepo_SetDone(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	task := testutil.NewTestTask("ship", testutil.DayBlock(thursday))
	require.NoError(t, repo.Create(ctx, task))

	first := time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetDone(ctx, task.ID, true, first))
	require.NoError(t, repo.SetDone(ctx, task.ID, true, first.Add(time.Hour)))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, first.Equal(*got.CompletedAt), "completion time is kept")

	require.NoError(t, repo.SetDone(ctx, task.ID, false, first.Add(2*time.Hour)))
	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTodo, got.Status)
	assert.Nil(t, got.CompletedAt)

	assert.ErrorIs(t, repo.SetDone(ctx, "nope", true, first), ErrNotFound)
}

func TestTaskRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)

	task := testutil.NewTestTask("tmp", testutil.DayBlock(thursday))
	require.NoError(t, repo.Create(ctx, task))
	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), ErrNotFound)
}

func TestTaskRepo_Positions(t *testing.T) {
	ctx := context.Background()
	repo := newTaskRepo(t)
	block := testutil.DayBlock(thursday)

	maxPos, err := repo.MaxPosition(ctx, block)
	require.NoError(t, err)
	assert.Equal(t, -1, maxPos)

	for i, title := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, testutil.NewTestTask(title, block, testutil.WithPosition(i))))
	}
	maxPos, err = repo.MaxPosition(ctx, block)
	require.NoError(t, err)
	assert.Equal(t, 2, maxPos)

	require.NoError(t, repo.ShiftPositions(ctx, block, 1, 1))
	got, err := repo.ListInRange(ctx, block.TimelineID, block.Range())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 2, 3}, []int{got[0].Position, got[1].Position, got[2].Position})
}
