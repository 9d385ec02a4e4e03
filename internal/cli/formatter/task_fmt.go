package formatter

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// TaskID shortens a task ID for display. Occurrence IDs keep their block
// suffix so they stay resolvable.
func TaskID(t *domain.Task) string {
	if src, block, ok := strings.Cut(t.ID, "@"); ok {
		if len(src) > 8 {
			src = src[:8]
		}
		return StyleDim.Render(src + "@" + block)
	}
	return TruncID(t.ID)
}

// TaskTitle renders a task title with its status marker and a ↻ for
// recurring tasks.
func TaskTitle(t *domain.Task) string {
	return taskLine(t, t.Title)
}

// TaskLine is TaskTitle with the title cut to fit width cells.
func TaskLine(t *domain.Task, width int) string {
	return taskLine(t, Truncate(t.Title, width-4))
}

func taskLine(t *domain.Task, title string) string {
	line := StatusMark(t.Status) + " " + StatusStyle(t.Status).Render(title)
	if t.IsRecurring() || t.Occurrence {
		line += " " + StylePurple.Render("↻")
	}
	return line
}

// FormatTaskTable renders tasks as a table. timelines resolves the timeline
// column; unknown timelines print their ID.
func FormatTaskTable(tasks []*domain.Task, timelines []domain.Timeline) string {
	if len(tasks) == 0 {
		return Dim("No tasks.") + "\n"
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		timeline := t.Block.String()
		if tl, ok := domain.FindTimeline(timelines, t.Block.TimelineID); ok {
			timeline = tl.DisplayName()
		}
		rows = append(rows, []string{
			TaskID(t),
			timeline,
			CompactInstance(t.Block.Block) + " " + Dim(t.Block.Block.String()),
			StatusPill(t.Status),
			TaskTitle(t),
		})
	}
	return RenderTable([]string{"ID", "TIMELINE", "BLOCK", "STATUS", "TITLE"}, rows)
}

// FormatTimelineTable renders the timeline list.
func FormatTimelineTable(timelines []domain.Timeline) string {
	if len(timelines) == 0 {
		return Dim("No timelines.") + "\n"
	}
	rows := make([][]string, 0, len(timelines))
	for _, t := range timelines {
		rows = append(rows, []string{Dim(strconv.FormatInt(t.ID, 10)), Bold(t.DisplayName()), t.Unit.String()})
	}
	return RenderTable([]string{"ID", "NAME", "UNIT"}, rows)
}
