package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoquest/internal/ui"
)

func newFailOverdueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fail-overdue",
		Short: "Fail every open task whose deadline has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Tasks failed before an error are still reported.
			failed, err := svc.FailOverdue(ctx)
			if ok, perr := printStructured(cmd.OutOrStdout(), failed); ok {
				if perr != nil {
					return perr
				}
				return err
			}
			for _, f := range failed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Bad.Render(ui.IconSkull+" Failed"), f.TaskID, f.Title, ui.XPText(f.XPDelta))
			}
			if len(failed) == 0 && err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconSparkle+" Nothing overdue."))
			}
			return err
		},
	}

	return cmd
}
