package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/insights/application/commands"
)

var stopCmd = &cobra.Command{
	Use:   "stop [session-id]",
	Short: "Stop a focus session",
	Long: `Stop a running focus session. The elapsed time counts toward the
session's category buffer for the week it started in.

Examples:
  timegrid session stop 4f2c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.StopSessionHandler == nil {
			fmt.Println("Session tracking requires database connection.")
			return nil
		}

		sessionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}

		result, err := app.StopSessionHandler.Handle(cmd.Context(), commands.StopSessionCommand{
			UserID:    app.CurrentUserID,
			SessionID: sessionID,
			EndedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to stop session: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		fmt.Printf("Session stopped after %d minutes\n", result.Session.Minutes())
		return nil
	},
}
