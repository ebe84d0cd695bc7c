package cmd

import (
	"github.com/spf13/cobra"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Policy bundle commands",
	Long:  `Utilities for working with policy bundle files locally, without a server.`,
}

func init() {
	rootCmd.AddCommand(bundleCmd)
}
