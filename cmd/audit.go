package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Administrative audit commands",
	Long:  `View the resolution audit trail on the server. Requires an admin token (omniroute login).`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
