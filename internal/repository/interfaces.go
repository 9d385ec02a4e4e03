package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

type TimelineRepo interface {
	Create(ctx context.Context, t *domain.Timeline) error
	GetByID(ctx context.Context, id int64) (*domain.Timeline, error)
	List(ctx context.Context) ([]domain.Timeline, error)
	Count(ctx context.Context) (int, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListInRange returns the tasks of a timeline whose block overlaps r,
	// ordered by block then position.
	ListInRange(ctx context.Context, timelineID int64, r calendar.DateRange) ([]*domain.Task, error)
	// ListRecurring returns the recurring tasks of a timeline whose own
	// block starts on or before the given date.
	ListRecurring(ctx context.Context, timelineID int64, before calendar.Date) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	SetDone(ctx context.Context, id string, done bool, at time.Time) error
	Delete(ctx context.Context, id string) error
	// MaxPosition returns the highest position in a block, or -1 when the
	// block is empty.
	MaxPosition(ctx context.Context, block domain.TimelineBlock) (int, error)
	// ShiftPositions adds delta to every position >= from in a block.
	ShiftPositions(ctx context.Context, block domain.TimelineBlock, from, delta int) error
}
