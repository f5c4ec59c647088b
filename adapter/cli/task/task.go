package task

import (
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Queue tasks, estimate their duration, and mark them complete.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(durationCmd)
	Cmd.AddCommand(completeCmd)
}
