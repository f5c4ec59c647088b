package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/insights/application/commands"
)

var startCategory string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Long: `Start a focus session now. A running session pins its start slot
on the day grid; its full duration counts once it is stopped.

Examples:
  timegrid session start
  timegrid session start --category 4f2c...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.StartSessionHandler == nil {
			fmt.Println("Session tracking requires database connection.")
			return nil
		}

		startCmd := commands.StartSessionCommand{
			UserID:    app.CurrentUserID,
			StartedAt: time.Now(),
		}
		if startCategory != "" {
			categoryID, err := uuid.Parse(startCategory)
			if err != nil {
				return fmt.Errorf("invalid category id: %w", err)
			}
			startCmd.CategoryID = &categoryID
		}

		result, err := app.StartSessionHandler.Handle(cmd.Context(), startCmd)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		fmt.Printf("Session started at %s\n", result.Session.StartedAt().Format("15:04"))
		fmt.Printf("  ID: %s\n", result.Session.ID())
		fmt.Println("  Stop it with 'timegrid session stop'")
		return nil
	},
}

func init() {
	startCmd.Flags().StringVar(&startCategory, "category", "", "category id for buffer accounting")
}
