package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoquest/internal/storage"
	"todoquest/internal/ui"
)

func newWhoamiCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or change the player name",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var p *storage.Profile
			if cmd.Flags().Changed("set") {
				p, err = svc.SetUsername(ctx, name)
			} else {
				p, err = svc.Profile(ctx)
			}
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), p); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Title.Render(p.Username), ui.Muted.Render(fmt.Sprintf("(level %d)", p.Level)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "set", "", "New player name")
	return cmd
}
