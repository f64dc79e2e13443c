package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, streak and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.Stats(ctx)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), st); ok {
				return err
			}

			out := cmd.OutOrStdout()
			p := st.Profile
			req := engine.XPRequiredForLevel(p.Level)
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, p.Username))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d/%d %s %s", p.CurrentXP, req,
				ui.ProgressBar(p.CurrentXP, req, 20),
				ui.Muted.Render(fmt.Sprintf("(%.0f%%, %d to go)", st.LevelProgress, st.XPToNextLevel)))))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d day(s)", ui.IconFire, p.StreakDays)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconScroll+" Record"))
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Completed:"), p.TasksCompleted)
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("High priority:"), p.HighPriorityCompleted)
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Failed:"), p.TasksFailed)
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Abandoned:"), st.HistoryByStatus[engine.HistoryDeleted])
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Open tasks:"), st.ActiveTasks)
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Total XP earned:"), st.TotalXPEarned)
			fmt.Fprintf(out, "- %s %d/%d\n", ui.Key.Render("Achievements:"), st.AchievementsUnlocked, st.AchievementsTotal)
			return nil
		},
	}

	return cmd
}
