package cmd

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Active route plan commands",
	Long:  `Inspect the route plans currently held by the server. Requires an admin token (omniroute login).`,
}

var routesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active route plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving active routes...")
		routes, correlation, err := cli.ListRoutes(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list routes")
		}

		log.Info().Msgf("Retrieved %d active route plans", len(routes))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Capability", "Provider", "Tier", "Expires"})

		for _, plan := range routes {
			provider := "(none)"
			tier := ""
			if len(plan.Hops) > 0 {
				provider = plan.Hops[0].ProviderID
				tier = string(plan.Hops[0].Tier)
			}
			t.AppendRow(table.Row{
				plan.ID,
				color.New(color.Bold).Sprint(plan.Capability),
				provider,
				tier,
				"in " + time.Until(plan.ExpiresAt).Round(time.Second).String(),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.AddCommand(routesListCmd)
}
