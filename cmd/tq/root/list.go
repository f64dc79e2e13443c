package root

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/storage"
	"todoquest/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := svc.ListTasks(ctx)
			if err != nil {
				return err
			}
			if !all {
				open := tasks[:0]
				for _, t := range tasks {
					if !t.Completed {
						open = append(open, t)
					}
				}
				tasks = open
			}
			if ok, err := printStructured(cmd.OutOrStdout(), tasks); ok {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No tasks. Add one with `tq add \"Title\"`."))
				return nil
			}
			renderTasks(cmd, tasks, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include tasks inserted as already done")
	return cmd
}

func renderTasks(cmd *cobra.Command, tasks []storage.Task, now time.Time) {
	tw := newTable(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"ID", "", "Title", "Priority", "XP", "Deadline"})
	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		p := engine.Priority(t.Priority)
		tw.AppendRow(table.Row{t.ID, check, t.Title, ui.PriorityText(p.String()), engine.CompletionXP(p), formatDeadline(t.Deadline, now)})
	}
	tw.Render()
}
