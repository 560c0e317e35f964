package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Inspect background tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())
			if _, err := app.ready(cmd.Context()); err != nil {
				return err
			}

			tasks, err := app.Hub.Tasks().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				pterm.Info.Println("No tasks")
				return nil
			}

			data := pterm.TableData{{"ID", "NAME", "TYPE", "STATUS", "PROGRESS", "UPDATED"}}
			for _, t := range tasks {
				data = append(data, []string{
					t.ID.String(), t.Name, t.Type, string(t.Status),
					fmt.Sprintf("%.0f%%", t.Progress*100), humanize.Time(t.UpdatedAt),
				})
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", out)
			return nil
		},
	})

	return cmd
}
