package testutil

import (
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

// IDs of the timelines every fresh database is seeded with.
const (
	DayTimelineID   int64 = 1
	WeekTimelineID  int64 = 2
	MonthTimelineID int64 = 3
)

// SeededTimelines mirrors the default rows, finest first.
func SeededTimelines() []domain.Timeline {
	return []domain.Timeline{
		{ID: DayTimelineID, Name: "Day", Unit: calendar.Day},
		{ID: WeekTimelineID, Name: "Week", Unit: calendar.Week},
		{ID: MonthTimelineID, Name: "Month", Unit: calendar.Month},
	}
}

// DayBlock returns the block of the seeded day timeline containing d.
func DayBlock(d calendar.Date) domain.TimelineBlock {
	return domain.TimelineBlock{TimelineID: DayTimelineID, Block: calendar.DayOf(d)}
}

// WeekBlock returns the block of the seeded week timeline containing d.
func WeekBlock(d calendar.Date) domain.TimelineBlock {
	return domain.TimelineBlock{TimelineID: WeekTimelineID, Block: calendar.WeekOf(d)}
}

// MonthBlock returns the block of the seeded month timeline containing d.
func MonthBlock(d calendar.Date) domain.TimelineBlock {
	return domain.TimelineBlock{TimelineID: MonthTimelineID, Block: calendar.MonthOf(d)}
}

// Task options
type TaskOption func(*domain.Task)

func WithNotes(n string) TaskOption {
	return func(t *domain.Task) {
		t.Notes = n
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithPosition(p int) TaskOption {
	return func(t *domain.Task) {
		t.Position = p
	}
}

func WithRecurrence(rule string) TaskOption {
	return func(t *domain.Task) {
		t.Recurrence = rule
	}
}

func WithCreatedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = at
		t.UpdatedAt = at
	}
}

func WithCompletedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.Status = domain.TaskDone
		t.CompletedAt = &at
	}
}

// NewTestTask builds a todo task in block. Timestamps are truncated to the
// second so they survive an RFC 3339 round trip unchanged.
func NewTestTask(title string, block domain.TimelineBlock, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Block:     block,
		Status:    domain.TaskTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
