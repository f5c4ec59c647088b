package habit

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/habits/application/commands"
	"github.com/svenhofer/timegrid/internal/identity/domain"
)

var (
	createFrequency string
	createDuration  int
	createStart     string
	createWeekdays  []string
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new habit",
	Long: `Create a recurring habit. Habits with a start time pin their slots
on the day grid; habits without one are listed as due but unplaced.

Frequencies:
  daily     - Every day
  weekdays  - Monday through Friday
  weekends  - Saturday and Sunday

Examples:
  timegrid habit create "Morning run" -f weekdays -d 45 --start 06:30
  timegrid habit create "Review notes" -d 15
  timegrid habit create "Stretch" -d 10 --on monday=07:00 --on friday=18:30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateHabitHandler == nil {
			fmt.Println("Habit creation requires database connection.")
			return nil
		}

		name := args[0]

		createCmd := commands.CreateHabitCommand{
			UserID:          app.CurrentUserID,
			Name:            name,
			DurationMinutes: createDuration,
			Frequency:       createFrequency,
		}

		if createStart != "" {
			minute, err := parseClock(createStart)
			if err != nil {
				return err
			}
			createCmd.DefaultStartMinute = &minute
		}

		if len(createWeekdays) > 0 {
			times, err := parseWeekdayTimes(createWeekdays)
			if err != nil {
				return err
			}
			createCmd.WeekdayStartMinute = times
		}

		result, err := app.CreateHabitHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create habit: %w", err)
		}

		fmt.Printf("Created habit: %s\n", name)
		fmt.Printf("  ID: %s\n", result.HabitID)
		fmt.Printf("  Frequency: %s\n", createFrequency)
		fmt.Printf("  Duration: %d minutes\n", createDuration)
		if createStart != "" {
			fmt.Printf("  Start time: %s\n", createStart)
		}
		return nil
	},
}

// parseWeekdayTimes parses repeated "weekday=HH:MM" flag values.
func parseWeekdayTimes(entries []string) (map[time.Weekday]int, error) {
	times := make(map[time.Weekday]int, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid override %q, use weekday=HH:MM", entry)
		}
		day, err := domain.ParseWeekday(parts[0])
		if err != nil {
			return nil, err
		}
		minute, err := parseClock(parts[1])
		if err != nil {
			return nil, err
		}
		times[day] = minute
	}
	return times, nil
}

func init() {
	createCmd.Flags().StringVarP(&createFrequency, "frequency", "f", "daily", "habit frequency (daily, weekdays, weekends)")
	createCmd.Flags().IntVarP(&createDuration, "duration", "d", 15, "session duration in minutes")
	createCmd.Flags().StringVar(&createStart, "start", "", "default start time (HH:MM)")
	createCmd.Flags().StringArrayVar(&createWeekdays, "on", nil, "per-weekday start time, e.g. monday=07:00 (repeatable)")
}
