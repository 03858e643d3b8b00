package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie0129/kcal/pkg/client"
)

func NewScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule [cron-expression]",
		Aliases: []string{"sch", "sched"},
		Short:   "Manage the periodic re-apply schedule",
		Long: `Manage the periodic re-apply schedule.

The schedule command can be used in multiple ways:
  kcal schedule 'minute hour day month weekday' Set schedule with cron expression
  kcal schedule disable                         Disable the schedule
  kcal schedule skip                            Skip next run
  kcal schedule show                            Show current schedule`,
		Example: `  kcal schedule '@every 30m'
  kcal schedule '0 8 * * *' (At 08:00 every day)`,
		GroupID: gAdvanced,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no arguments, show the current schedule
			if len(args) == 0 {
				return runScheduleShow(cmd)
			}
			return runScheduleSet(cmd, args[0])
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "disable",
			Short: "Disable the re-apply schedule",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := apiClient.SetReapply(""); err != nil {
					return err
				}
				cmd.Println("Re-apply schedule disabled.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "skip",
			Short: "Skip the next scheduled re-apply",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := apiClient.SkipReapply()
				if err != nil {
					return err
				}
				cmd.Println("Next scheduled re-apply skipped.")
				printReapply(cmd, st)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the re-apply schedule",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runScheduleShow(cmd)
			},
		},
	)

	return cmd
}

func runScheduleSet(cmd *cobra.Command, cronExpr string) error {
	st, err := apiClient.SetReapply(cronExpr)
	if err != nil {
		return err
	}
	cmd.Println("Re-apply scheduled.")
	printReapply(cmd, st)
	return nil
}

func runScheduleShow(cmd *cobra.Command) error {
	st, err := apiClient.GetReapply()
	if err != nil {
		return err
	}
	printReapply(cmd, st)
	return nil
}

func printReapply(cmd *cobra.Command, st *client.ReapplyStatus) {
	if st.Schedule == "" || st.NextRun == nil {
		cmd.Println("Re-apply schedule is not set.")
		return
	}
	cmd.Printf("Schedule: %s\n", bold("%s", st.Schedule))
	cmd.Printf("Next run: %s\n", bold("%s", st.NextRun.Local().Format(time.DateTime)))
}
