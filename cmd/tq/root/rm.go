package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoquest/internal/ui"
)

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task (open tasks cost half their XP)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.DeleteTask(ctx, id)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), res); ok {
				return err
			}
			if !res.Penalized {
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Muted.Render(ui.IconTrash+" Removed"), id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Warn.Render(ui.IconTrash+" Abandoned"), id, res.History.Title, ui.XPText(res.XPDelta))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", res.Profile.CurrentXP))
			return nil
		},
	}

	return cmd
}
