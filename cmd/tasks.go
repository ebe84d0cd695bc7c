package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Background task commands",
	Long:  `Inspect and trigger the server's background tasks (bundle sync, route sweep). Requires an admin token (omniroute login).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
