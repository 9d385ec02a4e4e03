package domain

import (
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testBlock() TimelineBlock {
	return TimelineBlock{TimelineID: 1, Block: calendar.DayOf(calendar.NewDate(2025, 6, 15))}
}

func TestTaskValidate(t *testing.T) {
	ok := &Task{Title: "Write report", Block: testBlock()}
	assert.NoError(t, ok.Validate())

	cases := map[string]*Task{
		"blank title":    {Title: "  ", Block: testBlock()},
		"no timeline":    {Title: "x"},
		"unknown status": {Title: "x", Block: testBlock(), Status: "paused"},
	}
	for name, task := range cases {
		err := task.Validate()
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidTask, name)
	}
}

func TestTaskMarkDone(t *testing.T) {
	task := &Task{Status: TaskTodo}
	require.NoError(t, task.MarkDone(testNow))
	assert.Equal(t, TaskDone, task.Status)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, testNow, *task.CompletedAt)
	assert.True(t, task.IsDone())

	later := testNow.Add(time.Hour)
	require.NoError(t, task.MarkDone(later))
	assert.Equal(t, testNow, *task.CompletedAt, "should not overwrite existing CompletedAt")
	assert.Equal(t, later, task.UpdatedAt)
}

func TestTaskReopenAndSkip(t *testing.T) {
	task := &Task{Status: TaskDone, CompletedAt: &testNow}
	require.NoError(t, task.Reopen(testNow))
	assert.Equal(t, TaskTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.False(t, task.IsDone())

	require.NoError(t, task.Skip(testNow))
	assert.Equal(t, TaskSkipped, task.Status)
	assert.True(t, task.IsDone())
}

func TestTaskOccurrenceIsReadOnly(t *testing.T) {
	task := &Task{Status: TaskTodo, Occurrence: true}
	assert.ErrorIs(t, task.MarkDone(testNow), ErrInvalidTask)
	assert.ErrorIs(t, task.Skip(testNow), ErrInvalidTask)
	assert.ErrorIs(t, task.Reopen(testNow), ErrInvalidTask)
	assert.Equal(t, TaskTodo, task.Status)
}

func TestTaskIsRecurring(t *testing.T) {
	assert.False(t, (&Task{}).IsRecurring())
	assert.True(t, (&Task{Recurrence: "FREQ=WEEKLY"}).IsRecurring())
}
