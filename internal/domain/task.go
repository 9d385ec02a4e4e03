package domain

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID     string
	Title  string
	Notes  string
	Block  TimelineBlock
	Status TaskStatus

	// Position orders tasks inside one block, ascending.
	Position int

	// Recurrence is an optional RFC 5545 RRULE body (e.g. "FREQ=WEEKLY;COUNT=4")
	// anchored at the block's start date.
	Recurrence string

	// Occurrence marks a read-only copy generated from a recurring task for a
	// block other than its own.
	Occurrence bool

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields a store requires.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if t.Block.TimelineID <= 0 {
		return fmt.Errorf("%w: timeline is required", ErrInvalidTask)
	}
	if !t.Block.Block.Unit().Valid() {
		return fmt.Errorf("%w: block has no valid time unit", ErrInvalidTask)
	}
	if t.Status != "" && !ValidTaskStatuses[string(t.Status)] {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, t.Status)
	}
	return nil
}

// IsDone reports whether the task is finished or skipped.
func (t *Task) IsDone() bool {
	return t.Status == TaskDone || t.Status == TaskSkipped
}

// MarkDone completes the task. CompletedAt is kept if already set.
func (t *Task) MarkDone(now time.Time) error {
	if t.Occurrence {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", ErrInvalidTask, t.ID)
	}
	t.Status = TaskDone
	if t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now
	return nil
}

// Skip marks the task as skipped.
func (t *Task) Skip(now time.Time) error {
	if t.Occurrence {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", ErrInvalidTask, t.ID)
	}
	t.Status = TaskSkipped
	t.CompletedAt = nil
	t.UpdatedAt = now
	return nil
}

// Reopen returns a finished task to todo.
func (t *Task) Reopen(now time.Time) error {
	if t.Occurrence {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", ErrInvalidTask, t.ID)
	}
	t.Status = TaskTodo
	t.CompletedAt = nil
	t.UpdatedAt = now
	return nil
}

// IsRecurring reports whether the task carries a recurrence rule.
func (t *Task) IsRecurring() bool {
	return strings.TrimSpace(t.Recurrence) != ""
}
