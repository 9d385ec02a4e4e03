package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// prefixSearchDays bounds how far around today a task ID prefix is looked up.
const prefixSearchDays = 366

// resolveTimeline resolves a timeline identifier which can be:
//   - A numeric ID
//   - A name (case-insensitive)
//   - A unit ("day", "week", "month"), when exactly one timeline has it
func resolveTimeline(ctx context.Context, app *App, input string) (domain.Timeline, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Timeline{}, fmt.Errorf("timeline is required")
	}

	timelines, err := app.Store.ListTimelines(ctx)
	if err != nil {
		return domain.Timeline{}, err
	}

	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		if t, ok := domain.FindTimeline(timelines, id); ok {
			return t, nil
		}
		return domain.Timeline{}, fmt.Errorf("timeline #%d not found", id)
	}

	for _, t := range timelines {
		if strings.EqualFold(t.Name, input) {
			return t, nil
		}
	}

	if unit, err := calendar.ParseTimeUnit(input); err == nil {
		var matches []domain.Timeline
		for _, t := range timelines {
			if t.Unit == unit {
				matches = append(matches, t)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
			return domain.Timeline{}, fmt.Errorf("no %s timeline", unit)
		default:
			return domain.Timeline{}, fmt.Errorf("%d timelines have unit %s; use a name or ID", len(matches), unit)
		}
	}

	return domain.Timeline{}, fmt.Errorf("timeline not found: %q", input)
}

// resolveTask resolves a full task ID, an occurrence ID, or a unique prefix
// of a task ID. Prefixes are matched against tasks within a year of today.
func resolveTask(ctx context.Context, app *App, input string) (*domain.Task, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("task ID is required")
	}

	t, err := app.Store.GetTask(ctx, input)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	timelines, err := app.Store.ListTimelines(ctx)
	if err != nil {
		return nil, err
	}
	today := app.today()
	r := calendar.NewDateRange(today.AddDays(-prefixSearchDays), today.AddDays(prefixSearchDays))

	seen := make(map[string]*domain.Task)
	for _, tl := range timelines {
		tasks, err := app.Store.Tasks(ctx, tl.ID, r)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if !t.Occurrence && strings.HasPrefix(t.ID, input) {
				seen[t.ID] = t
			}
		}
	}

	switch len(seen) {
	case 0:
		return nil, fmt.Errorf("task not found: %q", input)
	case 1:
		for _, t := range seen {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", input, len(seen))
}
