package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/productivity/application/commands"
)

var durationHours float64

var durationCmd = &cobra.Command{
	Use:   "duration [task-id]",
	Short: "Set a task's duration estimate",
	Long: `Set or change a task's duration estimate in hours. A scheduled
task loses its placement: the old slot run no longer matches the new
estimate, so the next auto-schedule pass re-places it.

Examples:
  timegrid task duration 4f2c... -d 1.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetTaskDurationHandler == nil {
			fmt.Println("Task editing requires database connection.")
			return nil
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		result, err := app.SetTaskDurationHandler.Handle(cmd.Context(), commands.SetTaskDurationCommand{
			UserID:        app.CurrentUserID,
			TaskID:        taskID,
			DurationHours: durationHours,
		})
		if err != nil {
			return fmt.Errorf("failed to set duration: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		fmt.Printf("Set estimate to %.2fh\n", durationHours)
		return nil
	},
}

func init() {
	durationCmd.Flags().Float64VarP(&durationHours, "duration", "d", 0, "duration estimate in hours")
	_ = durationCmd.MarkFlagRequired("duration")
}
