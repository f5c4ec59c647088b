package meeting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/meetings/application/commands"
)

var (
	createStart    string
	createEnd      string
	createCategory string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a meeting",
	Long: `Create a meeting. The meeting occupies every 15-minute slot it
touches on the day grid and counts toward its category's weekly buffer.

Examples:
  timegrid meeting create "Sprint planning" --start "2026-09-15 10:00" --end "2026-09-15 11:30"
  timegrid meeting create "1:1 with Dana" --start "2026-09-15 14:00" --end "2026-09-15 14:30" --category 4f2c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateMeetingHandler == nil {
			fmt.Println("Meeting creation requires database connection.")
			return nil
		}

		startAt, err := time.ParseInLocation("2006-01-02 15:04", createStart, time.Local)
		if err != nil {
			return fmt.Errorf("invalid start, use \"YYYY-MM-DD HH:MM\": %w", err)
		}
		endAt, err := time.ParseInLocation("2006-01-02 15:04", createEnd, time.Local)
		if err != nil {
			return fmt.Errorf("invalid end, use \"YYYY-MM-DD HH:MM\": %w", err)
		}

		createCmd := commands.CreateMeetingCommand{
			UserID:  app.CurrentUserID,
			Title:   args[0],
			StartAt: startAt,
			EndAt:   endAt,
		}
		if createCategory != "" {
			categoryID, err := uuid.Parse(createCategory)
			if err != nil {
				return fmt.Errorf("invalid category id: %w", err)
			}
			createCmd.CategoryID = &categoryID
		}

		result, err := app.CreateMeetingHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create meeting: %w", err)
		}
		app.Flush(cmd.Context(), result.Invalidations)

		fmt.Printf("Created meeting: %s\n", args[0])
		fmt.Printf("  ID: %s\n", result.MeetingID)
		fmt.Printf("  %s - %s (%d min)\n",
			startAt.Format("Mon Jan 2 15:04"),
			endAt.Format("15:04"),
			int(endAt.Sub(startAt).Minutes()),
		)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createStart, "start", "", "start time (YYYY-MM-DD HH:MM)")
	createCmd.Flags().StringVar(&createEnd, "end", "", "end time (YYYY-MM-DD HH:MM)")
	createCmd.Flags().StringVar(&createCategory, "category", "", "category id for buffer accounting")
	_ = createCmd.MarkFlagRequired("start")
	_ = createCmd.MarkFlagRequired("end")
}
