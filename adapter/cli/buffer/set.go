package buffer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/insights/application/commands"
)

var setHours float64

var setCmd = &cobra.Command{
	Use:   "set [category-id]",
	Short: "Set a category's weekly hour budget",
	Long: `Budget weekly hours for a category. Meetings and focus sessions in
the category count against the budget.

Examples:
  timegrid buffer set 4f2c... --hours 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetBufferHandler == nil {
			fmt.Println("Buffer editing requires database connection.")
			return nil
		}

		categoryID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid category id: %w", err)
		}

		result, err := app.SetBufferHandler.Handle(cmd.Context(), commands.SetBufferCommand{
			UserID:      app.CurrentUserID,
			CategoryID:  categoryID,
			WeeklyHours: setHours,
			Date:        time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to set buffer: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		fmt.Printf("Budgeted %.1fh per week\n", setHours)
		return nil
	},
}

func init() {
	setCmd.Flags().Float64VarP(&setHours, "hours", "H", 0, "weekly hour budget")
	_ = setCmd.MarkFlagRequired("hours")
}
