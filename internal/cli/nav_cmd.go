package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newNavCmd(app *App) *cobra.Command {
	var (
		date     = app.today()
		timeline string
	)

	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Open the timeline navigator",
		Long: "Browse tasks on a two-axis surface: h/l zooms between timelines,\n" +
			"j/k moves through dates, enter opens the selected block.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := navOptions{Date: date}
			if timeline != "" {
				tl, err := resolveTimeline(cmd.Context(), app, timeline)
				if err != nil {
					return err
				}
				opts.TimelineID = tl.ID
			}
			return runNavigator(cmd.Context(), app, opts)
		},
	}

	dateFlag(cmd.Flags(), &date, "date", "Date to open at (default today)", app.today)
	cmd.Flags().StringVar(&timeline, "timeline", "", "Timeline to open (default finest)")

	return cmd
}

// runNavigator runs the TUI until the user quits. Store subscriptions end
// with it.
func runNavigator(ctx context.Context, app *App, opts navOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newAppModel(ctx, app, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		fm.close()
	}
	return err
}
