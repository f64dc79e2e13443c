package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
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

			res, err := svc.CompleteTask(ctx, id)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), res); ok {
				return err
			}
			printCompletion(cmd, res)
			return nil
		},
	}

	return cmd
}

func printCompletion(cmd *cobra.Command, res *engine.CompleteResult) {
	out := cmd.OutOrStdout()
	xp := fmt.Sprintf("+%d XP", res.XPAwarded)
	if res.StreakBonus > 0 {
		xp += fmt.Sprintf(" (%d + %s %d streak bonus)", res.BaseXP, ui.IconFire, res.StreakBonus)
	}
	fmt.Fprintf(out, "%s #%d %s %s\n", ui.Good.Render(ui.IconDone+" Completed"), res.TaskID, res.History.Title, ui.Gold.Render(xp))
	fmt.Fprintln(out, ui.LabelValue("Level", levelLine(res)))
	fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d/%d", res.Profile.CurrentXP, engine.XPRequiredForLevel(res.Profile.Level))))
	for _, a := range res.Unlocked {
		fmt.Fprintf(out, "%s %s %s\n", ui.Gold.Render(ui.IconTrophy+" Achievement unlocked:"), a.Title, ui.Muted.Render(a.Description))
	}
}
