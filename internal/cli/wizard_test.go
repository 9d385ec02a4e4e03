package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAddTask(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	msg := applyAddTask(ctx, app, testutil.WeekBlock(mar7), &taskFields{
		title:  "  plan sprint ",
		notes:  "goals first",
		repeat: " FREQ=WEEKLY;COUNT=2 ",
	})
	out, ok := msg.(cmdOutputMsg)
	require.True(t, ok)
	assert.Contains(t, out.output, "Added plan sprint to Week 10, 2024")

	tasks, err := app.Store.Tasks(ctx, testutil.WeekTimelineID, calendar.SingleDay(mar7))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "plan sprint", tasks[0].Title)
	assert.Equal(t, "goals first", tasks[0].Notes)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=2", tasks[0].Recurrence)
}

func TestApplyAddTask_ReportsErrors(t *testing.T) {
	app := testApp(t)

	msg := applyAddTask(context.Background(), app, testutil.DayBlock(mar7), &taskFields{title: " "})
	out, ok := msg.(cmdOutputMsg)
	require.True(t, ok)
	assert.Contains(t, out.output, "Error:")
	assert.Contains(t, out.output, "title is required")
}

func TestApplyEditTask(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	task := seedTask(t, app, "draft", testutil.DayBlock(mar7), testutil.WithNotes("old"))

	msg := applyEditTask(ctx, app, task.ID, &taskFields{title: "final", notes: "", repeat: "FREQ=DAILY"})
	out, ok := msg.(cmdOutputMsg)
	require.True(t, ok)
	assert.Contains(t, out.output, "Updated final")

	got, err := app.Store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Empty(t, got.Notes)
	assert.Equal(t, "FREQ=DAILY", got.Recurrence)
	assert.Equal(t, testutil.DayBlock(mar7), got.Block)

	msg = applyEditTask(ctx, app, "missing", &taskFields{title: "x"})
	assert.Contains(t, msg.(cmdOutputMsg).output, "Error:")
}

func TestTaskFormValidators(t *testing.T) {
	assert.Error(t, requiredTitle("   "))
	assert.NoError(t, requiredTitle("x"))

	assert.NotNil(t, newTaskForm("Day · Thu Mar 7, 2024", &taskFields{}))
}
