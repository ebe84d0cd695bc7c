package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/pkg/client"
)

var (
	auditLogCorrelation string
	auditLogCapability  string
	auditLogFingerprint string
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	Example: `  # Last 25 resolutions
  omniroute audit log

  # Everything a capability did
  omniroute audit log --capability cache.redis -n 100

  # Which resolutions used this capability token?
  omniroute audit log --fingerprint sha256-base64-value`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit log...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         uint(limit),
			CorrelationID: auditLogCorrelation,
			Capability:    auditLogCapability,
			Fingerprint:   auditLogFingerprint,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log")
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "ID", "Capability", "Class", "Resolved", "Tier", "Provider", "Error",
		})

		for _, e := range audits {
			status := "YES"
			if !e.Resolved {
				status = "NO (" + string(e.FailureCode) + ")"
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.ID,
				truncate(e.Capability, 30),
				e.Classification,
				status,
				e.Tier,
				e.ProviderID,
				truncate(e.Error, 40),
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogCorrelation, "correlation", "", "Filter by correlation ID")
	auditLogCmd.Flags().StringVar(&auditLogCapability, "capability", "", "Filter by capability")
	auditLogCmd.Flags().StringVar(&auditLogFingerprint, "fingerprint", "", "Filter by token fingerprint")
}
