package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type taskStore struct {
	timelines repository.TimelineRepo
	tasks     repository.TaskRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
	hub       *changeHub
	now       func() time.Time
}

// NewTaskStore wires the SQLite-backed TaskStore. Only the first non-nil
// observer is used.
func NewTaskStore(timelines repository.TimelineRepo, tasks repository.TaskRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TaskStore {
	return &taskStore{
		timelines: timelines,
		tasks:     tasks,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
		hub:       newChangeHub(),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (s *taskStore) ObserveTimelines(ctx context.Context) <-chan []domain.Timeline {
	return observe(ctx, s.hub,
		func(c change) bool { return c.timelines },
		s.listTimelines,
		s.reportObserveError(ctx, "observe_timelines", nil),
	)
}

func (s *taskStore) ObserveTasks(ctx context.Context, timelineID int64, r calendar.DateRange) <-chan []*domain.Task {
	return observe(ctx, s.hub,
		func(c change) bool { return c.touches(timelineID) },
		func(ctx context.Context) ([]*domain.Task, error) { return s.loadTasks(ctx, timelineID, r) },
		s.reportObserveError(ctx, "observe_tasks", map[string]any{"timeline_id": timelineID, "range": r.String()}),
	)
}

func (s *taskStore) reportObserveError(ctx context.Context, name string, fields map[string]any) func(error) {
	return func(err error) {
		track(ctx, s.observer, name, fields)(err)
	}
}

func (s *taskStore) ListTimelines(ctx context.Context) (list []domain.Timeline, err error) {
	done := track(ctx, s.observer, "list_timelines", nil)
	defer func() { done(err) }()
	return s.listTimelines(ctx)
}

func (s *taskStore) listTimelines(ctx context.Context) ([]domain.Timeline, error) {
	list, err := s.timelines.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SortTimelines(list), nil
}

func (s *taskStore) GetTimeline(ctx context.Context, id int64) (*domain.Timeline, error) {
	return s.timelines.GetByID(ctx, id)
}

func (s *taskStore) CreateTimeline(ctx context.Context, name string, unit calendar.TimeUnit) (t *domain.Timeline, err error) {
	done := track(ctx, s.observer, "create_timeline", map[string]any{"unit": unit.String()})
	defer func() { done(err) }()

	if !unit.Valid() {
		return nil, fmt.Errorf("creating timeline: unknown unit %d", int(unit))
	}
	t = &domain.Timeline{Name: strings.TrimSpace(name), Unit: unit}
	if err := s.timelines.Create(ctx, t); err != nil {
		return nil, err
	}
	s.hub.publish(change{timelines: true})
	return t, nil
}

func (s *taskStore) RenameTimeline(ctx context.Context, id int64, name string) (err error) {
	done := track(ctx, s.observer, "rename_timeline", map[string]any{"timeline_id": id})
	defer func() { done(err) }()

	if err := s.timelines.Rename(ctx, id, strings.TrimSpace(name)); err != nil {
		return err
	}
	s.hub.publish(change{timelines: true})
	return nil
}

func (s *taskStore) DeleteTimeline(ctx context.Context, id int64) (err error) {
	done := track(ctx, s.observer, "delete_timeline", map[string]any{"timeline_id": id})
	defer func() { done(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimelines := repository.NewSQLiteTimelineRepo(tx)
		if _, err := txTimelines.GetByID(ctx, id); err != nil {
			return err
		}
		n, err := txTimelines.Count(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return domain.ErrLastTimeline
		}
		return txTimelines.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.hub.publish(change{timelines: true})
	return nil
}

func (s *taskStore) Tasks(ctx context.Context, timelineID int64, r calendar.DateRange) (tasks []*domain.Task, err error) {
	done := track(ctx, s.observer, "list_tasks", map[string]any{"timeline_id": timelineID, "range": r.String()})
	defer func() { done(err) }()
	return s.loadTasks(ctx, timelineID, r)
}

// loadTasks merges stored tasks with generated occurrences, ordered by
// block, then stored before generated, then position.
func (s *taskStore) loadTasks(ctx context.Context, timelineID int64, r calendar.DateRange) ([]*domain.Task, error) {
	if r.IsEmpty() {
		return nil, nil
	}
	stored, err := s.tasks.ListInRange(ctx, timelineID, r)
	if err != nil {
		return nil, err
	}
	recurring, err := s.tasks.ListRecurring(ctx, timelineID, r.End)
	if err != nil {
		return nil, err
	}

	out := stored
	for _, t := range recurring {
		occs, err := expandOccurrences(t, r)
		if err != nil {
			return nil, fmt.Errorf("expanding task %s: %w", t.ID, err)
		}
		out = append(out, occs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.Block.Block.Start().Compare(b.Block.Block.Start()); c != 0 {
			return c < 0
		}
		if a.Occurrence != b.Occurrence {
			return !a.Occurrence
		}
		return a.Position < b.Position
	})
	return out, nil
}

func (s *taskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if src, ok := OccurrenceSource(id); ok {
		base, err := s.tasks.GetByID(ctx, src)
		if err != nil {
			return nil, err
		}
		_, blockStr, _ := strings.Cut(id, occurrenceSep)
		block, err := calendar.ParseInstance(blockStr)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return occurrenceOf(base, block), nil
	}
	return s.tasks.GetByID(ctx, id)
}

// AddTask assigns an ID when missing and appends the task to its block.
func (s *taskStore) AddTask(ctx context.Context, t *domain.Task) (err error) {
	done := track(ctx, s.observer, "add_task", map[string]any{"block": t.Block.String()})
	defer func() { done(err) }()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if err := s.checkWritable(t); err != nil {
		return err
	}
	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == domain.TaskDone && t.CompletedAt == nil {
		t.CompletedAt = &now
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := checkBlockUnit(ctx, repository.NewSQLiteTimelineRepo(tx), t.Block); err != nil {
			return err
		}
		txTasks := repository.NewSQLiteTaskRepo(tx)
		maxPos, err := txTasks.MaxPosition(ctx, t.Block)
		if err != nil {
			return err
		}
		t.Position = maxPos + 1
		return txTasks.Create(ctx, t)
	})
	if err != nil {
		return err
	}
	s.hub.publish(change{timelineIDs: []int64{t.Block.TimelineID}})
	return nil
}

// UpdateTask writes title, notes, status and recurrence. Use MoveTask to
// change the block or position.
func (s *taskStore) UpdateTask(ctx context.Context, t *domain.Task) (err error) {
	done := track(ctx, s.observer, "update_task", map[string]any{"task_id": t.ID})
	defer func() { done(err) }()

	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if err := s.checkWritable(t); err != nil {
		return err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		existing, err := txTasks.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}
		t.Block = existing.Block
		t.Position = existing.Position
		t.CreatedAt = existing.CreatedAt
		t.UpdatedAt = s.now()
		switch {
		case t.Status != domain.TaskDone:
			t.CompletedAt = nil
		case t.CompletedAt == nil:
			t.CompletedAt = existing.CompletedAt
			if t.CompletedAt == nil {
				at := t.UpdatedAt
				t.CompletedAt = &at
			}
		}
		return txTasks.Update(ctx, t)
	})
	if err != nil {
		return err
	}
	s.hub.publish(change{timelineIDs: []int64{t.Block.TimelineID}})
	return nil
}

func (s *taskStore) SetDone(ctx context.Context, id string, isDone bool) (err error) {
	done := track(ctx, s.observer, "set_done", map[string]any{"task_id": id, "done": isDone})
	defer func() { done(err) }()

	if _, ok := OccurrenceSource(id); ok {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", domain.ErrInvalidTask, id)
	}
	var timelineID int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		t, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		timelineID = t.Block.TimelineID
		return txTasks.SetDone(ctx, id, isDone, s.now())
	})
	if err != nil {
		return err
	}
	s.hub.publish(change{timelineIDs: []int64{timelineID}})
	return nil
}

func (s *taskStore) MoveTask(ctx context.Context, id string, to domain.TimelineBlock, position int) (err error) {
	done := track(ctx, s.observer, "move_task", map[string]any{"task_id": id, "block": to.String(), "position": position})
	defer func() { done(err) }()

	if _, ok := OccurrenceSource(id); ok {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", domain.ErrInvalidTask, id)
	}
	var from domain.TimelineBlock
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		t, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkBlockUnit(ctx, repository.NewSQLiteTimelineRepo(tx), to); err != nil {
			return err
		}
		from = t.Block

		siblings, err := txTasks.ListInRange(ctx, to.TimelineID, to.Range())
		if err != nil {
			return err
		}
		others := 0
		for _, sib := range siblings {
			if sib.ID != id && sib.Block == to {
				others++
			}
		}
		if position < 0 || position > others {
			position = others
		}

		if err := txTasks.ShiftPositions(ctx, from, t.Position+1, -1); err != nil {
			return err
		}
		if err := txTasks.ShiftPositions(ctx, to, position, 1); err != nil {
			return err
		}
		t.Block = to
		t.Position = position
		t.UpdatedAt = s.now()
		return txTasks.Update(ctx, t)
	})
	if err != nil {
		return err
	}
	s.hub.publish(change{timelineIDs: []int64{from.TimelineID, to.TimelineID}})
	return nil
}

func (s *taskStore) DeleteTask(ctx context.Context, id string) (err error) {
	done := track(ctx, s.observer, "delete_task", map[string]any{"task_id": id})
	defer func() { done(err) }()

	if _, ok := OccurrenceSource(id); ok {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", domain.ErrInvalidTask, id)
	}
	var timelineID int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		t, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		timelineID = t.Block.TimelineID
		if err := txTasks.Delete(ctx, id); err != nil {
			return err
		}
		return txTasks.ShiftPositions(ctx, t.Block, t.Position+1, -1)
	})
	if err != nil {
		return err
	}
	s.hub.publish(change{timelineIDs: []int64{timelineID}})
	return nil
}

func (s *taskStore) checkWritable(t *domain.Task) error {
	if t.Occurrence {
		return fmt.Errorf("%w: recurring occurrence %s is read-only", domain.ErrInvalidTask, t.ID)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	return validateRecurrence(t)
}

// checkBlockUnit requires the block's unit to match its timeline's.
func checkBlockUnit(ctx context.Context, timelines repository.TimelineRepo, b domain.TimelineBlock) error {
	tl, err := timelines.GetByID(ctx, b.TimelineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: timeline %d does not exist", domain.ErrInvalidTask, b.TimelineID)
		}
		return err
	}
	if tl.Unit != b.Block.Unit() {
		return fmt.Errorf("%w: block %s does not fit %s timeline %q",
			domain.ErrInvalidTask, b.Block, tl.Unit, tl.DisplayName())
	}
	return nil
}
