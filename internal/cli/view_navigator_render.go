package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/navigation"
	"github.com/charmbracelet/lipgloss"
)

const (
	// compactWidth is the pane width below which block headings shorten.
	compactWidth  = 28
	progressWidth = 12
)

func (v *navigatorView) View() string {
	switch {
	case v.nav == nil && v.err != nil:
		return formatter.StyleRed.Render("Could not load timelines: " + v.err.Error())
	case v.nav == nil:
		return formatter.Dim("Loading…")
	case len(v.nav.Timelines()) == 0:
		return formatter.Dim("No timelines. Create one with 'tempo timeline add <name> --unit week'.")
	}

	width := max(v.state.Width, 40)
	height := max(v.state.ContentHeight()-1, 3)
	pos := v.displayPosition()

	var body string
	parent := pos.TimelineNavPos.Timeline
	if child, ok := pos.TimelineNavPos.Child(); ok {
		cw := max(int(float64(width)*v.cfg.ChildFraction), 12)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			v.renderPane(child, pos, cw, height),
			v.renderPane(parent, pos, width-cw, height),
		)
	} else {
		body = v.renderPane(parent, pos, width, height)
	}

	return v.renderMotion() + "\n" + body
}

// renderMotion describes where the surface rests, or the transition in
// progress while it is off its anchors.
func (v *navigatorView) renderMotion() string {
	a, b, progress := v.nav.ActivePositions()
	if a == b {
		today := v.state.App.today()
		return fmt.Sprintf("%s  %s  %s",
			formatter.Bold(a.TimelineNavPos.String()),
			formatter.FormatRange(a.DateRange),
			formatter.Dim(formatter.RelativeDay(a.Date, today)))
	}

	from, to := a.TimelineNavPos.String(), b.TimelineNavPos.String()
	if a.TimelineNavPos == b.TimelineNavPos {
		from, to = formatter.FormatInstance(a.TimeBlock), formatter.FormatInstance(b.TimeBlock)
	}
	return fmt.Sprintf("%s %s %s  %s",
		from, formatter.Dim("→"), to,
		formatter.RenderProgress(progress, progressWidth))
}

func (v *navigatorView) renderPane(t domain.Timeline, pos navigation.NavigationPosition, width, height int) string {
	inner := max(width-4, 8)
	lines := []string{formatter.StyleHeader.Render(strings.ToUpper(t.DisplayName()))}
	for _, in := range t.Unit.InstancesCovering(pos.RangeFor(t)) {
		lines = append(lines, v.renderBlock(domain.TimelineBlock{TimelineID: t.ID, Block: in}, inner)...)
	}
	if limit := height - 2; len(lines) > limit {
		lines = append(lines[:limit-1], formatter.Dim("…"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(formatter.ColorDim).
		Padding(0, 1).
		Width(width - 2).
		Height(height - 2).
		Render(strings.Join(lines, "\n"))
}

func (v *navigatorView) renderBlock(tb domain.TimelineBlock, width int) []string {
	label := formatter.FormatInstance(tb.Block)
	if width < compactWidth {
		label = formatter.CompactInstance(tb.Block)
	}
	if tb.Block.Contains(v.state.App.today()) {
		label += " " + formatter.StyleGreen.Render("•")
	}

	selected := v.hasSelection && tb == v.selected
	heading := "  " + formatter.Bold(label)
	if selected {
		heading = formatter.StyleHeader.Render("▸ ") + formatter.StyleHeader.Render(label)
	}

	lines := []string{heading}
	for i, t := range v.tasksIn(tb) {
		prefix := "  "
		if selected && i == v.cursor {
			prefix = formatter.StyleHeader.Render("› ")
		}
		lines = append(lines, "  "+prefix+formatter.TaskLine(t, width-4))
	}
	return lines
}
