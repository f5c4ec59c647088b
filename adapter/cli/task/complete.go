package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/productivity/application/commands"
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as completed",
	Long: `Mark a task done. A completed task frees its slots on the day
grid.

Examples:
  timegrid task complete 4f2c...`,
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteTaskHandler == nil {
			fmt.Println("Task completion requires database connection.")
			return nil
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		result, err := app.CompleteTaskHandler.Handle(cmd.Context(), commands.CompleteTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
		})
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		fmt.Println("Task completed.")
		return nil
	},
}
