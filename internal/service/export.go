package service

import (
	"context"
	"io"
	"strings"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//tempo//tempo//EN"

type icsExporter struct {
	store    TaskStore
	observer UseCaseObserver
}

// NewICSExporter exports the tasks of a TaskStore as iCalendar VTODOs.
func NewICSExporter(store TaskStore, observers ...UseCaseObserver) Exporter {
	return &icsExporter{store: store, observer: useCaseObserverOrNoop(observers)}
}

// ExportICS writes one VTODO per stored task overlapping r, on every
// timeline. A recurring task is written once with its RRULE, even when only
// its occurrences fall inside r.
func (e *icsExporter) ExportICS(ctx context.Context, r calendar.DateRange, w io.Writer) (err error) {
	done := track(ctx, e.observer, "export_ics", map[string]any{"range": r.String()})
	defer func() { done(err) }()

	timelines, err := e.store.ListTimelines(ctx)
	if err != nil {
		return err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	seen := make(map[string]bool)
	for _, tl := range timelines {
		tasks, err := e.store.Tasks(ctx, tl.ID, r)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.Occurrence {
				src, _ := OccurrenceSource(t.ID)
				if seen[src] {
					continue
				}
				if t, err = e.store.GetTask(ctx, src); err != nil {
					return err
				}
			}
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			addTodo(cal, tl, t)
		}
	}
	return cal.SerializeTo(w)
}

func addTodo(cal *ical.Calendar, tl domain.Timeline, t *domain.Task) {
	todo := cal.AddTodo(t.ID)
	todo.SetSummary(t.Title)
	if t.Notes != "" {
		todo.SetDescription(t.Notes)
	}
	todo.SetAllDayStartAt(t.Block.Block.Start().Time())
	todo.SetAllDayDueAt(t.Block.Block.End().Time())
	todo.SetCreatedTime(t.CreatedAt)
	todo.SetModifiedAt(t.UpdatedAt)
	todo.SetDtStampTime(t.UpdatedAt)
	todo.AddCategory(tl.DisplayName())

	switch t.Status {
	case domain.TaskDone:
		todo.SetStatus(ical.ObjectStatusCompleted)
		if t.CompletedAt != nil {
			todo.SetCompletedAt(*t.CompletedAt)
		}
	case domain.TaskSkipped:
		todo.SetStatus(ical.ObjectStatusCancelled)
	default:
		todo.SetStatus(ical.ObjectStatusNeedsAction)
	}
	if t.IsRecurring() {
		todo.AddRrule(strings.TrimPrefix(strings.TrimSpace(t.Recurrence), "RRULE:"))
	}
}
