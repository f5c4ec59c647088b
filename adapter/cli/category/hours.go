package category

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/insights/application/queries"
)

var (
	hoursFrom string
	hoursTo   string
)

var hoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Report meeting hours per category",
	Long: `Sum held-meeting time per category over a date range. The range
defaults to the last 30 days.

Examples:
  timegrid category hours
  timegrid category hours --from 2026-08-01 --to 2026-08-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetCategoryHoursHandler == nil {
			fmt.Println("Hour reporting requires database connection.")
			return nil
		}

		to := time.Now()
		from := to.AddDate(0, 0, -30)
		var err error
		if hoursFrom != "" {
			from, err = time.Parse("2006-01-02", hoursFrom)
			if err != nil {
				return fmt.Errorf("invalid --from, use YYYY-MM-DD: %w", err)
			}
		}
		if hoursTo != "" {
			to, err = time.Parse("2006-01-02", hoursTo)
			if err != nil {
				return fmt.Errorf("invalid --to, use YYYY-MM-DD: %w", err)
			}
		}

		report, err := app.GetCategoryHoursHandler.Handle(cmd.Context(), queries.GetCategoryHoursQuery{
			UserID: app.CurrentUserID,
			From:   from,
			To:     to,
		})
		if err != nil {
			return fmt.Errorf("failed to get category hours: %w", err)
		}

		fmt.Printf("Meeting hours %s - %s\n",
			from.Format("Jan 2"), to.Format("Jan 2, 2006"))
		fmt.Println(strings.Repeat("=", 50))

		if len(report) == 0 {
			fmt.Println("\n  No held meetings in range.")
			return nil
		}
		for _, bucket := range report {
			fmt.Printf("%-24s %8s  (%d meetings)\n",
				bucket.CategoryName, bucket.FormattedHours(), bucket.MeetingCount)
		}
		return nil
	},
}

func init() {
	hoursCmd.Flags().StringVar(&hoursFrom, "from", "", "range start (YYYY-MM-DD)")
	hoursCmd.Flags().StringVar(&hoursTo, "to", "", "range end (YYYY-MM-DD)")
}
