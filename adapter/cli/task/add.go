package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/productivity/application/commands"
)

var (
	addDuration float64
	addParent   string
	addPosition int
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task to the queue",
	Long: `Add a pending task. Tasks with a duration estimate are picked up
by the auto-scheduler; tasks without one stay in the queue until an
estimate is set.

Examples:
  timegrid task add "Write quarterly report" -d 2.5
  timegrid task add "Prepare slides" --parent 4f2c...
  timegrid task add "Inbox zero"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			fmt.Println("Task creation requires database connection.")
			return nil
		}

		addCmd := commands.CreateTaskCommand{
			UserID:   app.CurrentUserID,
			Title:    args[0],
			Position: addPosition,
		}
		if cmd.Flags().Changed("duration") {
			addCmd.DurationHours = &addDuration
		}
		if addParent != "" {
			parentID, err := uuid.Parse(addParent)
			if err != nil {
				return fmt.Errorf("invalid parent task id: %w", err)
			}
			addCmd.ParentTaskID = &parentID
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), addCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("Added task: %s\n", args[0])
		fmt.Printf("  ID: %s\n", result.TaskID)
		if addCmd.DurationHours != nil {
			fmt.Printf("  Estimate: %.2fh\n", *addCmd.DurationHours)
		} else {
			fmt.Println("  No estimate yet - set one with 'timegrid task duration'")
		}
		return nil
	},
}

func init() {
	addCmd.Flags().Float64VarP(&addDuration, "duration", "d", 0, "duration estimate in hours")
	addCmd.Flags().StringVar(&addParent, "parent", "", "parent task id (creates a subtask)")
	addCmd.Flags().IntVarP(&addPosition, "position", "p", 0, "queue position")
}
