package service

import (
	"context"
	"io"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/importer"
)

// TaskStore persists timelines and tasks and lets callers observe them.
//
// Observe* streams emit the current snapshot first, then a fresh snapshot
// after every committed mutation that could change it. A subscriber that
// falls behind only ever sees the latest snapshot. Streams close when ctx is
// cancelled.
type TaskStore interface {
	ObserveTimelines(ctx context.Context) <-chan []domain.Timeline
	ObserveTasks(ctx context.Context, timelineID int64, r calendar.DateRange) <-chan []*domain.Task

	ListTimelines(ctx context.Context) ([]domain.Timeline, error)
	GetTimeline(ctx context.Context, id int64) (*domain.Timeline, error)
	CreateTimeline(ctx context.Context, name string, unit calendar.TimeUnit) (*domain.Timeline, error)
	RenameTimeline(ctx context.Context, id int64, name string) error
	// DeleteTimeline removes a timeline and its tasks. The last remaining
	// timeline cannot be deleted.
	DeleteTimeline(ctx context.Context, id int64) error

	// Tasks returns the stored tasks of a timeline overlapping r plus the
	// read-only occurrences of recurring tasks that fall inside r.
	Tasks(ctx context.Context, timelineID int64, r calendar.DateRange) ([]*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	AddTask(ctx context.Context, t *domain.Task) error
	UpdateTask(ctx context.Context, t *domain.Task) error
	SetDone(ctx context.Context, id string, done bool) error
	// MoveTask places a task in block at position, shifting its neighbours.
	// A negative position appends.
	MoveTask(ctx context.Context, id string, block domain.TimelineBlock, position int) error
	DeleteTask(ctx context.Context, id string) error

	// ImportTasks creates the timelines and tasks of schema in one
	// transaction. Nothing is written when any of them is rejected.
	ImportTasks(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}

// ImportResult summarizes a committed import.
type ImportResult struct {
	Timelines []domain.Timeline
	TaskCount int
}

// Exporter writes tasks in a portable calendar format.
type Exporter interface {
	ExportICS(ctx context.Context, r calendar.DateRange, w io.Writer) error
}
