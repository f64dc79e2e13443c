package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

func newEditCmd() *cobra.Command {
	var (
		title    string
		desc     string
		priority string
		due      string
		noDue    bool
		done     bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; --done checks it off and awards XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var in engine.UpdateTaskInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("desc") {
				in.Description = &desc
			}
			if flags.Changed("priority") {
				p, err := engine.ParsePriority(priority)
				if err != nil {
					return err
				}
				in.Priority = &p
			}
			if flags.Changed("due") {
				d, err := parseDeadline(due, time.Local)
				if err != nil {
					return err
				}
				in.Deadline = &d
			}
			in.ClearDeadline = noDue
			if flags.Changed("done") {
				in.Completed = &done
			}
			if in == (engine.UpdateTaskInput{}) {
				return errors.New("nothing to change")
			}

			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.UpdateTask(ctx, id, in)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), res); ok {
				return err
			}
			if res.Completion != nil {
				printCompletion(cmd, res.Completion)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Good.Render(ui.IconSparkle+" Updated"), res.Task.ID, res.Task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "New deadline")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "Remove the deadline")
	cmd.Flags().BoolVar(&done, "done", false, "Check the task off")
	cmd.MarkFlagsMutuallyExclusive("due", "no-due")
	return cmd
}
