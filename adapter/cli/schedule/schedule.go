package schedule

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "View and auto-plan your day",
	Long:  `Show the day timeline, run the auto-scheduler, and find free slots.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(autoCmd)
	Cmd.AddCommand(freeCmd)
}

// parseDay parses a --date flag value, defaulting to today.
func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return day, nil
}
