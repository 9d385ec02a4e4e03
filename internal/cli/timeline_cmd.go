package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timeline",
		Aliases: []string{"tl"},
		Short:   "Manage timelines",
	}

	cmd.AddCommand(
		newTimelineListCmd(app),
		newTimelineAddCmd(app),
		newTimelineRenameCmd(app),
		newTimelineRemoveCmd(app),
	)

	return cmd
}

func newTimelineListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List timelines, finest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timelines, err := app.Store.ListTimelines(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimelineTable(timelines))
			return nil
		},
	}
}

func newTimelineAddCmd(app *App) *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := calendar.ParseTimeUnit(unit)
			if err != nil {
				return err
			}
			t, err := app.Store.CreateTimeline(cmd.Context(), args[0], u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created timeline %s\n", formatter.FormatTimeline(*t))
			return nil
		},
	}

	cmd.Flags().StringVar(&unit, "unit", "", "Time unit: day, week or month (required)")
	_ = cmd.MarkFlagRequired("unit")

	return cmd
}

func newTimelineRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <timeline> <name>",
		Short: "Rename a timeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTimeline(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := app.Store.RenameTimeline(cmd.Context(), t.ID, args[1]); err != nil {
				return err
			}
			t.Name = args[1]
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed timeline %s\n", formatter.FormatTimeline(t))
			return nil
		},
	}
}

func newTimelineRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <timeline>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a timeline and its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTimeline(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := app.Store.DeleteTimeline(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted timeline %s\n", formatter.FormatTimeline(t))
			return nil
		},
	}
}
