package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/scheduling/application/commands"
)

var autoDate string

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Auto-schedule pending tasks",
	Long: `Run a scheduling pass for one day: fixed items (meetings, due
habits, focus sessions) pin their slots, then pending tasks are placed
first-fit into the remaining gaps in queue order.

Examples:
  timegrid schedule auto
  timegrid schedule auto --date 2026-09-15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ScheduleDayHandler == nil {
			fmt.Println("Auto-scheduling requires database connection.")
			return nil
		}

		day, err := parseDay(autoDate)
		if err != nil {
			return err
		}

		result, err := app.ScheduleDayHandler.Handle(cmd.Context(), commands.ScheduleDayCommand{
			UserID: app.CurrentUserID,
			Day:    day,
		})
		if err != nil {
			return fmt.Errorf("failed to schedule day: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		if len(result.Placements) == 0 && len(result.Unscheduled) == 0 {
			fmt.Println("No pending tasks to place.")
			return nil
		}

		for _, p := range result.Placements {
			fmt.Printf("Placed %s at %s (%d slots)\n",
				p.Title, p.StartTime.Format("15:04"), p.SlotCount)
		}
		for _, t := range result.Unscheduled {
			fmt.Printf("Could not place %s (%.2fh) - no run of free slots long enough\n",
				t.Title, t.DurationHours)
		}
		fmt.Printf("Window utilization: %.1f%%\n", result.WindowUtilization)
		return nil
	},
}

func init() {
	autoCmd.Flags().StringVarP(&autoDate, "date", "d", "", "date to schedule (YYYY-MM-DD, default today)")
}
