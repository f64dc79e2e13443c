package root

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			all, err := svc.ListAchievements(ctx)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), all); ok {
				return err
			}
			p, err := svc.Profile(ctx)
			if err != nil {
				return err
			}
			m := engine.MetricsFromProfile(p)

			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"", "Achievement", "Description", "Progress"})
			for _, a := range all {
				icon := ui.IconLock
				progress := ""
				if a.Unlocked {
					icon = ui.IconTrophy
					progress = ui.Good.Render("unlocked")
					if a.UnlockedAt != nil {
						progress = ui.Good.Render("unlocked " + a.UnlockedAt.Local().Format("2006-01-02"))
					}
				} else if v, ok := m.Value(engine.AchievementType(a.Type)); ok {
					progress = fmt.Sprintf("%s %d/%d", ui.ProgressBar(v, a.Requirement, 10), min(v, a.Requirement), a.Requirement)
				}
				tw.AppendRow(table.Row{icon, a.Title, ui.Muted.Render(a.Description), progress})
			}
			tw.Render()
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Unlocked", fmt.Sprintf("%d/%d", engine.CountUnlocked(all), len(all))))
			return nil
		},
	}

	return cmd
}
