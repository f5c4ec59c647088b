package category

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svenhofer/timegrid/adapter/cli"
	"github.com/svenhofer/timegrid/internal/insights/application/commands"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a category",
	Long: `Create a category. Meetings and focus sessions assigned to it are
grouped in hour reports and counted against its weekly buffer.

Examples:
  timegrid category create "Deep work"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateCategoryHandler == nil {
			fmt.Println("Category creation requires database connection.")
			return nil
		}

		result, err := app.CreateCategoryHandler.Handle(cmd.Context(), commands.CreateCategoryCommand{
			UserID: app.CurrentUserID,
			Name:   args[0],
		})
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		fmt.Printf("Created category: %s\n", args[0])
		fmt.Printf("  ID: %s\n", result.Category.ID())
		return nil
	},
}
