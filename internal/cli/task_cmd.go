package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskShowCmd(app),
		newTaskEditCmd(app),
		newTaskDoneCmd(app),
		newTaskUndoCmd(app),
		newTaskSkipCmd(app),
		newTaskMoveCmd(app),
		newTaskRemoveCmd(app),
	)

	return cmd
}

// timelineOrFinest resolves input, or picks the finest timeline when it is
// empty.
func timelineOrFinest(ctx context.Context, app *App, input string) (domain.Timeline, error) {
	if input != "" {
		return resolveTimeline(ctx, app, input)
	}
	timelines, err := app.Store.ListTimelines(ctx)
	if err != nil {
		return domain.Timeline{}, err
	}
	if len(timelines) == 0 {
		return domain.Timeline{}, fmt.Errorf("no timelines; create one with 'tempo timeline add'")
	}
	return domain.SortTimelines(timelines)[0], nil
}

func newTaskAddCmd(app *App) *cobra.Command {
	var (
		timeline string
		notes    string
		repeat   string
		date     = app.today()
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the block containing a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tl, err := timelineOrFinest(ctx, app, timeline)
			if err != nil {
				return err
			}

			t := &domain.Task{
				Title:      args[0],
				Notes:      notes,
				Block:      tl.BlockFrom(date),
				Recurrence: repeat,
			}
			if err := app.Store.AddTask(ctx, t); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s to %s %s\n",
				formatter.TaskID(t), formatter.Bold(t.Title),
				tl.DisplayName(), formatter.FormatInstance(t.Block.Block))
			return nil
		},
	}

	cmd.Flags().StringVar(&timeline, "timeline", "", "Timeline name, unit or ID (default finest)")
	dateFlag(cmd.Flags(), &date, "date", "Date inside the target block (default today)", app.today)
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&repeat, "repeat", "", "Recurrence rule, e.g. FREQ=WEEKLY;COUNT=4")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var (
		timeline string
		from     = app.today()
		to       calendar.Date
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks whose blocks overlap a date range",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("to") {
				to = from
			}
			r := calendar.NewDateRange(from, to)
			if r.IsEmpty() {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			all, err := app.Store.ListTimelines(ctx)
			if err != nil {
				return err
			}
			timelines := all
			if timeline != "" {
				tl, err := resolveTimeline(ctx, app, timeline)
				if err != nil {
					return err
				}
				timelines = []domain.Timeline{tl}
			}

			var tasks []*domain.Task
			for _, tl := range timelines {
				got, err := app.Store.Tasks(ctx, tl.ID, r)
				if err != nil {
					return err
				}
				tasks = append(tasks, got...)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(formatter.FormatRange(r)))
			fmt.Fprint(out, formatter.FormatTaskTable(tasks, all))
			return nil
		},
	}

	cmd.Flags().StringVar(&timeline, "timeline", "", "Only list this timeline")
	dateFlag(cmd.Flags(), &from, "from", "First date (default today)", app.today)
	dateFlag(cmd.Flags(), &to, "to", "Last date (default --from)", app.today)

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			tl, err := app.Store.GetTimeline(ctx, t.Block.TimelineID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox(t.Title, taskDetails(t, *tl, time.Now())))
			return nil
		},
	}
}

func taskDetails(t *domain.Task, tl domain.Timeline, now time.Time) string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", formatter.Dim(fmt.Sprintf("%-10s", label)), value)
	}
	row("ID", t.ID)
	row("Status", formatter.StatusPill(t.Status))
	row("Block", tl.DisplayName()+" "+formatter.FormatInstance(t.Block.Block))
	if t.IsRecurring() {
		row("Repeats", t.Recurrence)
	}
	if !t.Occurrence {
		row("Created", formatter.HumanTimestamp(t.CreatedAt, now))
		row("Updated", formatter.HumanTimestamp(t.UpdatedAt, now))
	}
	if t.CompletedAt != nil {
		row("Completed", formatter.HumanTimestamp(*t.CompletedAt, now))
	}
	if t.Notes != "" {
		b.WriteString("\n" + t.Notes + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func newTaskEditCmd(app *App) *cobra.Command {
	var title, notes, repeat string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, notes or recurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				t.Title = title
			}
			if cmd.Flags().Changed("notes") {
				t.Notes = notes
			}
			if cmd.Flags().Changed("repeat") {
				t.Recurrence = repeat
			}
			if err := app.Store.UpdateTask(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", formatter.TaskID(t), formatter.Bold(t.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")
	cmd.Flags().StringVar(&repeat, "repeat", "", "New recurrence rule (empty clears it)")

	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	return newTaskSetDoneCmd(app, "done <id>", "Mark a task done", true)
}

func newTaskUndoCmd(app *App) *cobra.Command {
	return newTaskSetDoneCmd(app, "undo <id>", "Return a task to todo", false)
}

func newTaskSetDoneCmd(app *App, use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Store.SetDone(ctx, t.ID, done); err != nil {
				return err
			}
			status := domain.TaskTodo
			if done {
				status = domain.TaskDone
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StatusPill(status), formatter.Bold(t.Title))
			return nil
		},
	}
}

func newTaskSkipCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <id>",
		Short: "Mark a task skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := t.Skip(time.Now().UTC()); err != nil {
				return err
			}
			if err := app.Store.UpdateTask(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StatusPill(t.Status), formatter.Bold(t.Title))
			return nil
		},
	}
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var (
		timeline string
		position int
		date     calendar.Date
	)

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task to another block or position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}

			tl, err := app.Store.GetTimeline(ctx, t.Block.TimelineID)
			if err != nil {
				return err
			}
			target := *tl
			if timeline != "" {
				if target, err = resolveTimeline(ctx, app, timeline); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("date") {
				date = t.Block.Block.Start()
			}
			block := target.BlockFrom(date)

			if err := app.Store.MoveTask(ctx, t.ID, block, position); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s %s\n",
				formatter.Bold(t.Title), target.DisplayName(), formatter.FormatInstance(block.Block))
			return nil
		},
	}

	cmd.Flags().StringVar(&timeline, "timeline", "", "Target timeline (default the task's)")
	dateFlag(cmd.Flags(), &date, "date", "Date inside the target block (default the current block)", app.today)
	cmd.Flags().IntVar(&position, "position", -1, "Position inside the block (default last)")

	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Store.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", formatter.Bold(t.Title))
			return nil
		},
	}
}
