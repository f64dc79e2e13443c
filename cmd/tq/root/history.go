package root

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed, failed and deleted tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := svc.ListHistory(ctx, engine.HistoryStatus(status))
			if err != nil {
				return err
			}
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			if ok, err := printStructured(cmd.OutOrStdout(), items); ok {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"When", "Task", "Priority", "Status", "XP"})
			for _, h := range items {
				tw.AppendRow(table.Row{
					h.RecordedAt.Local().Format("2006-01-02 15:04"),
					h.Title,
					ui.PriorityText(engine.Priority(h.Priority).String()),
					ui.StatusText(h.Status),
					ui.XPText(h.XPEarned),
				})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (completed|failed|deleted)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n records")
	return cmd
}
