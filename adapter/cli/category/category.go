package category

import (
	"github.com/spf13/cobra"
)

// Cmd is the category command group
var Cmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
	Long:  `Create categories for grouping meetings and focus sessions.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(hoursCmd)
}
