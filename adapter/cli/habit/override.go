package habit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/habits/application/commands"
)

var (
	overrideDate  string
	overrideStart string
	overrideSkip  bool
)

var overrideCmd = &cobra.Command{
	Use:   "override [habit-id]",
	Short: "Override a habit for one day",
	Long: `Move or skip a single occurrence of a habit without touching its
recurring settings.

Examples:
  timegrid habit override 4f2c... --date 2026-09-15 --start 08:00
  timegrid habit override 4f2c... --date 2026-09-15 --skip`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetOverrideHandler == nil {
			fmt.Println("Habit overrides require database connection.")
			return nil
		}

		habitID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid habit id: %w", err)
		}
		if overrideDate == "" {
			return fmt.Errorf("--date is required")
		}
		day, err := time.Parse("2006-01-02", overrideDate)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
		}
		if !overrideSkip && overrideStart == "" {
			return fmt.Errorf("either --start or --skip is required")
		}

		overrideCmd := commands.SetOverrideCommand{
			UserID:  app.CurrentUserID,
			HabitID: habitID,
			Day:     day,
			Skipped: overrideSkip,
		}
		if overrideStart != "" {
			minute, err := parseClock(overrideStart)
			if err != nil {
				return err
			}
			overrideCmd.StartMinute = &minute
		}

		result, err := app.SetOverrideHandler.Handle(cmd.Context(), overrideCmd)
		if err != nil {
			return fmt.Errorf("failed to set override: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		if overrideSkip {
			fmt.Printf("Skipped habit for %s\n", overrideDate)
		} else {
			fmt.Printf("Moved habit to %s on %s\n", overrideStart, overrideDate)
		}
		return nil
	},
}

func init() {
	overrideCmd.Flags().StringVarP(&overrideDate, "date", "d", "", "day to override (YYYY-MM-DD)")
	overrideCmd.Flags().StringVar(&overrideStart, "start", "", "new start time (HH:MM)")
	overrideCmd.Flags().BoolVar(&overrideSkip, "skip", false, "skip the habit for the day")
}
