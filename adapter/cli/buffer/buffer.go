package buffer

import (
	"github.com/spf13/cobra"
)

// Cmd is the buffer command group
var Cmd = &cobra.Command{
	Use:   "buffer",
	Short: "Weekly category buffers",
	Long:  `Set weekly hour budgets per category and check how much is spent.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(setCmd)
}
