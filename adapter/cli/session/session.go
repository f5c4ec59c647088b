package session

import (
	"github.com/spf13/cobra"
)

// Cmd is the session command group
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Track focus sessions",
	Long:  `Start and stop focus sessions. Stopped sessions count toward their category's weekly buffer.`,
}

func init() {
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(stopCmd)
}
