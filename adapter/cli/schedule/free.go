package schedule

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/scheduling/application/queries"
)

var (
	freeDate    string
	freeMinutes int
)

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "Find free slots in the day",
	Long: `List the contiguous free windows of the day, optionally filtered
to a minimum length.

Examples:
  timegrid schedule free
  timegrid schedule free --min 60
  timegrid schedule free --date 2026-09-15 --min 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.FindFreeSlotsHandler == nil {
			fmt.Println("Free-slot search requires database connection.")
			return nil
		}

		day, err := parseDay(freeDate)
		if err != nil {
			return err
		}

		windows, err := app.FindFreeSlotsHandler.Handle(cmd.Context(), queries.FindFreeSlotsQuery{
			UserID:         app.CurrentUserID,
			Day:            day,
			MinimumMinutes: freeMinutes,
		})
		if err != nil {
			return fmt.Errorf("failed to find free slots: %w", err)
		}

		if len(windows) == 0 {
			fmt.Println("No free windows match.")
			return nil
		}

		for _, w := range windows {
			fmt.Printf("%s - %s  (%d min)\n",
				w.Start.Format("15:04"), w.End.Format("15:04"), w.Minutes)
		}
		return nil
	},
}

func init() {
	freeCmd.Flags().StringVarP(&freeDate, "date", "d", "", "date to search (YYYY-MM-DD, default today)")
	freeCmd.Flags().IntVarP(&freeMinutes, "min", "m", 0, "minimum window length in minutes")
}
