package cli

import (
	"context"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and settings used by CLI commands.
type App struct {
	Store    service.TaskStore
	Exporter service.Exporter
	Config   *config.Config

	// IsInteractive reports whether stdin is a terminal. Nil means false.
	IsInteractive func() bool
	// Today returns the current date. Nil means calendar.Today.
	Today func() calendar.Date
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) today() calendar.Date {
	if a.Today != nil {
		return a.Today()
	}
	return calendar.Today()
}

func (a *App) config() config.Config {
	if a.Config == nil {
		return *config.DefaultConfig()
	}
	return *a.Config
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App. Without a subcommand it opens the
// navigator when stdin is a terminal.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Plan tasks on day, week and month timelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runNavigator(cmd.Context(), app, navOptions{Date: app.today()})
		},
	}

	root.AddCommand(
		newTimelineCmd(app),
		newTaskCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newNavCmd(app),
	)

	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, app *App) error {
	return NewRootCmd(app).ExecuteContext(ctx)
}
