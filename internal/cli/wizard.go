package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// tempoHuhTheme returns a huh theme using the Gruvbox palette.
func tempoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// taskFields collects the add-task form input.
type taskFields struct {
	title  string
	notes  string
	repeat string
}

func requiredTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

// newTaskForm builds the add-task form for a block described by heading.
func newTaskForm(heading string, f *taskFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description(heading).
				Value(&f.title).
				Validate(requiredTitle),
			huh.NewInput().
				Title("Notes").
				Value(&f.notes),
			huh.NewInput().
				Title("Repeat").
				Description("Optional RRULE, e.g. FREQ=WEEKLY;COUNT=4").
				Value(&f.repeat).
				Validate(service.ValidateRecurrence),
		),
	).WithTheme(tempoHuhTheme()).WithShowHelp(false)
}

// applyAddTask stores a task built from f in block and reports the result
// as status output.
func applyAddTask(ctx context.Context, app *App, block domain.TimelineBlock, f *taskFields) tea.Msg {
	t := &domain.Task{
		Title:      strings.TrimSpace(f.title),
		Notes:      strings.TrimSpace(f.notes),
		Block:      block,
		Recurrence: strings.TrimSpace(f.repeat),
	}
	if err := app.Store.AddTask(ctx, t); err != nil {
		return cmdOutputMsg{output: formatter.StyleRed.Render("Error: " + err.Error())}
	}
	return cmdOutputMsg{output: fmt.Sprintf("Added %s to %s", formatter.Bold(t.Title), formatter.FormatInstance(block.Block))}
}

// applyEditTask writes f over the stored task id.
func applyEditTask(ctx context.Context, app *App, id string, f *taskFields) tea.Msg {
	t, err := app.Store.GetTask(ctx, id)
	if err != nil {
		return cmdOutputMsg{output: formatter.StyleRed.Render("Error: " + err.Error())}
	}
	t.Title = strings.TrimSpace(f.title)
	t.Notes = strings.TrimSpace(f.notes)
	t.Recurrence = strings.TrimSpace(f.repeat)
	if err := app.Store.UpdateTask(ctx, t); err != nil {
		return cmdOutputMsg{output: formatter.StyleRed.Render("Error: " + err.Error())}
	}
	return cmdOutputMsg{output: fmt.Sprintf("Updated %s", formatter.Bold(t.Title))}
}
