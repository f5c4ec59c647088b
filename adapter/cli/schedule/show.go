package schedule

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/scheduling/application/queries"
)

var showDate string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the day timeline",
	Long: `Display the 15-minute slot timeline for today or a specific date:
meetings, due habits, focus sessions, and scheduled tasks laid onto the
work window.

Examples:
  timegrid schedule show
  timegrid schedule show --date 2026-09-15`,
	Aliases: []string{"today", "view"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetDayTimelineHandler == nil {
			fmt.Println("Schedule viewing requires database connection.")
			return nil
		}

		day, err := parseDay(showDate)
		if err != nil {
			return err
		}

		timeline, err := app.GetDayTimelineHandler.Handle(cmd.Context(), queries.GetDayTimelineQuery{
			UserID: app.CurrentUserID,
			Day:    day,
		})
		if err != nil {
			return fmt.Errorf("failed to get timeline: %w", err)
		}

		fmt.Printf("Timeline for %s (%02d:00 - %02d:00)\n",
			timeline.Day.Format("Monday, January 2, 2006"),
			timeline.StartHour, timeline.EndHour,
		)
		fmt.Println(strings.Repeat("=", 60))

		busy := 0
		for _, slot := range timeline.Slots {
			if len(slot.Occupants) == 0 {
				continue
			}
			busy++
			labels := make([]string, 0, len(slot.Occupants))
			for _, occ := range slot.Occupants {
				labels = append(labels, fmt.Sprintf("[%s] %s", occ.Kind, occ.Title))
			}
			fmt.Printf("%s - %s  %s\n",
				slot.Start.Format("15:04"),
				slot.End.Format("15:04"),
				strings.Join(labels, ", "),
			)
		}

		if busy == 0 {
			fmt.Println("\n  Nothing on the grid yet.")
			fmt.Println("\n  Use 'timegrid task add' to queue work")
			fmt.Println("  Use 'timegrid schedule auto' to place pending tasks")
			return nil
		}

		fmt.Printf("\n%d of %d slots occupied, %d free\n",
			busy, len(timeline.Slots), timeline.FreeSlotCount())
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "date to show (YYYY-MM-DD, default today)")
}
