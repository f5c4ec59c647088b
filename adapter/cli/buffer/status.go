package buffer

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/insights/application/queries"
)

var statusDate string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show weekly buffer utilization",
	Long: `Show how much of each category's weekly hour budget is spent,
counting held meetings and completed focus sessions in the week.

Examples:
  timegrid buffer status
  timegrid buffer status --date 2026-09-15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetBufferUtilizationHandler == nil {
			fmt.Println("Buffer reporting requires database connection.")
			return nil
		}

		date := time.Now()
		if statusDate != "" {
			parsed, err := time.Parse("2006-01-02", statusDate)
			if err != nil {
				return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
			}
			date = parsed
		}

		report, err := app.GetBufferUtilizationHandler.Handle(cmd.Context(), queries.GetBufferUtilizationQuery{
			UserID: app.CurrentUserID,
			Date:   date,
		})
		if err != nil {
			return fmt.Errorf("failed to get buffer report: %w", err)
		}

		fmt.Printf("Week of %s - %s\n",
			report.WeekStart.Format("Jan 2"),
			report.WeekEnd.Format("Jan 2, 2006"),
		)
		fmt.Println(strings.Repeat("=", 60))

		if len(report.Buffers) == 0 {
			fmt.Println("\n  No buffers configured.")
			fmt.Println("\n  Use 'timegrid buffer set' to budget a category")
			return nil
		}

		for _, b := range report.Buffers {
			marker := " "
			if b.UtilizationPercent > 100 {
				marker = "!"
			}
			fmt.Printf("%s %-24s %5.1fh / %5.1fh  (%.0f%%, %.1fh left)\n",
				marker, b.CategoryName, b.HoursSpent, b.WeeklyHours,
				b.UtilizationPercent, b.HoursRemaining,
			)
		}
		if report.UncategorizedHours > 0 {
			fmt.Printf("\nUncategorized: %.1fh\n", report.UncategorizedHours)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusDate, "date", "d", "", "any day in the week to report (YYYY-MM-DD, default today)")
}
