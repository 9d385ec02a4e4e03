package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

func (s *taskStore) ImportTasks(ctx context.Context, schema *importer.ImportSchema) (res *ImportResult, err error) {
	done := track(ctx, s.observer, "import_tasks", map[string]any{
		"timelines": len(schema.Timelines),
		"tasks":     len(schema.Tasks),
	})
	defer func() { done(err) }()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	existing, err := s.listTimelines(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := importer.Convert(schema, existing)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	now := s.now()
	touched := make(map[int64]bool)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTimelines := repository.NewSQLiteTimelineRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		for _, tl := range plan.Timelines {
			if err := txTimelines.Create(ctx, tl); err != nil {
				return fmt.Errorf("creating timeline %q: %w", tl.Name, err)
			}
		}

		for _, pt := range plan.Tasks {
			t := pt.Task
			if pt.NewTimeline >= 0 {
				t.Block.TimelineID = plan.Timelines[pt.NewTimeline].ID
			}
			if err := s.prepareImported(t, now); err != nil {
				return fmt.Errorf("task %q: %w", t.Title, err)
			}
			maxPos, err := txTasks.MaxPosition(ctx, t.Block)
			if err != nil {
				return err
			}
			t.Position = maxPos + 1
			if err := txTasks.Create(ctx, t); err != nil {
				return fmt.Errorf("creating task %q: %w", t.Title, err)
			}
			touched[t.Block.TimelineID] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res = &ImportResult{TaskCount: len(plan.Tasks)}
	ids := make([]int64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	for _, tl := range plan.Timelines {
		res.Timelines = append(res.Timelines, *tl)
	}
	s.hub.publish(change{timelines: len(plan.Timelines) > 0, timelineIDs: ids})
	return res, nil
}

func (s *taskStore) prepareImported(t *domain.Task, now time.Time) error {
	t.ID = uuid.New().String()
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if err := s.checkWritable(t); err != nil {
		return err
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == domain.TaskDone {
		t.CompletedAt = &now
	}
	return nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidTask, msg)
}
