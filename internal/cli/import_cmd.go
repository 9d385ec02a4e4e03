package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import timelines and tasks from a JSON file",
		Long: `Reads a JSON file of the form

  {
    "timelines": [{"ref": "s", "name": "Sprints", "unit": "week"}],
    "tasks": [{"title": "Plan", "timeline": "s", "date": "2024-03-04"}]
  }

A task's timeline is a ref declared in the file, an existing timeline name,
or a unit held by exactly one existing timeline. Nothing is imported when any
entry is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadImportSchema(args[0])
			if err != nil {
				return fmt.Errorf("loading import file: %w", err)
			}
			res, err := app.Store.ImportTasks(cmd.Context(), schema)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d tasks", res.TaskCount)
			if len(res.Timelines) > 0 {
				names := make([]string, len(res.Timelines))
				for i, t := range res.Timelines {
					names[i] = formatter.FormatTimeline(t)
				}
				fmt.Fprintf(out, " and %d timelines: %s", len(res.Timelines), strings.Join(names, ", "))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
