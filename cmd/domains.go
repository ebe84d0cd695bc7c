package cmd

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Trust domain commands",
}

var domainsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the trust domains known to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving domains...")
		domains, correlation, err := cli.ListDomains(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list domains")
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Tier", "Capabilities", "Trust Root"})

		for _, domain := range domains {
			trustRoot := redCross
			if domain.HasTrustRoot {
				trustRoot = greenCheck
			}
			t.AppendRow(table.Row{
				color.New(color.Bold).Sprint(domain.ID),
				domain.Tier,
				truncate(strings.Join(domain.Capabilities, ", "), 50),
				trustRoot,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(domainsCmd)
	domainsCmd.AddCommand(domainsListCmd)
}
