package meeting

import (
	"github.com/spf13/cobra"
)

// Cmd is the meeting command group
var Cmd = &cobra.Command{
	Use:   "meeting",
	Short: "Manage meetings",
	Long:  `Create meetings that pin their slots on the day grid.`,
}

func init() {
	Cmd.AddCommand(createCmd)
}
