package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// Plan is a converted import, ready for persistence.
type Plan struct {
	// Timelines are created before any task. Their IDs are assigned on insert.
	Timelines []*domain.Timeline
	Tasks     []PlannedTask
}

// PlannedTask is a task whose block is known. When NewTimeline is
// non-negative the task belongs to Plan.Timelines[NewTimeline] and its
// Block.TimelineID is filled in once that timeline exists.
type PlannedTask struct {
	Task        *domain.Task
	NewTimeline int
}

// Convert transforms a validated ImportSchema into domain objects, resolving
// task timelines against the declared refs and the existing timelines.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema, existing []domain.Timeline) (*Plan, error) {
	plan := &Plan{}

	refIndex := make(map[string]int, len(schema.Timelines))
	for i, t := range schema.Timelines {
		unit, err := calendar.ParseTimeUnit(t.Unit)
		if err != nil {
			return nil, fmt.Errorf("timeline %q: %w", t.Ref, err)
		}
		refIndex[t.Ref] = i
		plan.Timelines = append(plan.Timelines, &domain.Timeline{Name: strings.TrimSpace(t.Name), Unit: unit})
	}

	for i, t := range schema.Tasks {
		date, err := calendar.ParseDate(t.Date)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}

		task := &domain.Task{
			Title:      strings.TrimSpace(t.Title),
			Notes:      strings.TrimSpace(t.Notes),
			Status:     domain.TaskStatus(t.Status),
			Recurrence: strings.TrimSpace(t.Repeat),
		}

		if idx, ok := refIndex[t.Timeline]; ok {
			task.Block = domain.TimelineBlock{Block: plan.Timelines[idx].Unit.InstanceFrom(date)}
			plan.Tasks = append(plan.Tasks, PlannedTask{Task: task, NewTimeline: idx})
			continue
		}

		tl, err := matchTimeline(existing, t.Timeline)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		task.Block = tl.BlockFrom(date)
		plan.Tasks = append(plan.Tasks, PlannedTask{Task: task, NewTimeline: -1})
	}

	return plan, nil
}

// matchTimeline finds an existing timeline by name, or by unit when exactly
// one timeline has it.
func matchTimeline(timelines []domain.Timeline, key string) (domain.Timeline, error) {
	key = strings.TrimSpace(key)
	for _, t := range timelines {
		if strings.EqualFold(t.Name, key) {
			return t, nil
		}
	}
	unit, err := calendar.ParseTimeUnit(key)
	if err != nil {
		return domain.Timeline{}, fmt.Errorf("unknown timeline %q", key)
	}
	var match []domain.Timeline
	for _, t := range timelines {
		if t.Unit == unit {
			match = append(match, t)
		}
	}
	if len(match) != 1 {
		return domain.Timeline{}, fmt.Errorf("timeline %q matches %d timelines", key, len(match))
	}
	return match[0], nil
}
