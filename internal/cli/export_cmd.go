package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to other calendar tools",
	}
	cmd.AddCommand(newExportICSCmd(app))
	return cmd
}

func newExportICSCmd(app *App) *cobra.Command {
	var (
		from, to calendar.Date
		out      string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write tasks as iCalendar to-dos",
		Long: "Writes every task whose block overlaps --from..--to as a VTODO.\n" +
			"Recurring tasks are written once with their RRULE. Defaults to the current month.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			month := calendar.MonthOf(app.today())
			if !cmd.Flags().Changed("from") {
				from = month.Start()
			}
			if !cmd.Flags().Changed("to") {
				to = calendar.MaxDate(from, month.End())
			}
			r := calendar.NewDateRange(from, to)
			if r.IsEmpty() {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			if out == "" || out == "-" {
				return app.Exporter.ExportICS(cmd.Context(), r, cmd.OutOrStdout())
			}
			return writeICSFile(cmd, app, r, out)
		},
	}

	dateFlag(cmd.Flags(), &from, "from", "First date (default start of this month)", app.today)
	dateFlag(cmd.Flags(), &to, "to", "Last date (default end of this month)", app.today)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func writeICSFile(cmd *cobra.Command, app *App, r calendar.DateRange, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := app.Exporter.ExportICS(cmd.Context(), r, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", formatter.FormatRange(r), path)
	return nil
}
