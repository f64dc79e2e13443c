package root

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todoquest/internal/engine"
	"todoquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var (
		desc     string
		priority string
		due      string
		done     bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, err := engine.ParsePriority(priority)
			if err != nil {
				return err
			}
			in := engine.CreateTaskInput{
				Title:       strings.Join(args, " "),
				Description: desc,
				Priority:    prio,
				Completed:   done,
			}
			if due != "" {
				d, err := parseDeadline(due, time.Local)
				if err != nil {
					return err
				}
				in.Deadline = &d
			}

			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.CreateTask(ctx, in)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd.OutOrStdout(), t); ok {
				return err
			}
			p := engine.Priority(t.Priority)
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"), t.ID, t.Title,
				ui.Muted.Render(fmt.Sprintf("(%s, worth %d XP)", p, engine.CompletionXP(p))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "low", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "Deadline (YYYY-MM-DD [HH:MM] or RFC 3339)")
	cmd.Flags().BoolVar(&done, "done", false, "Insert already checked off (no XP)")
	return cmd
}
