package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/api"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

var (
	resolveClass  string
	resolveSLA    string
	resolveMust   []string
	resolvePrefer []string
	resolveForbid []string
	resolveHints  []string
	resolveJSON   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve CAPABILITY",
	Short: "Resolve a capability to a route plan",
	Long: `Asks the server to resolve a capability request to a concrete provider.
	The answer is either a route plan or the per-tier failure trail.`,
	Example: `  # Resolve a cache for internal data
  omniroute resolve cache.redis

  # Confidential data, EU providers only, latency capped
  omniroute resolve cache.redis --class confidential \
    --must region=eu-west-1 --must max_latency_ms=50

  # Enforce an SLA expression on the winner
  omniroute resolve queue.kafka --sla 'latency_ms < 20 && uptime_pct >= 99.9'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := buildResolvePayload(args[0])
		if err != nil {
			return err
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Resolving %q...", payload.Capability)
		result, correlation, err := cli.Resolve(cmd.Context(), payload)
		if err != nil {
			return logError(err, correlation, "resolution request failed")
		}

		if resolveJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printOutcome(payload.Capability, result.ResolutionOutcome)
		if !result.Resolved {
			return BeQuietError{}
		}
		return nil
	},
}

func buildResolvePayload(capability string) (api.ResolvePayload, error) {
	payload := api.ResolvePayload{
		Capability:     capability,
		Classification: resolveClass,
		SLA:            resolveSLA,
	}

	var err error
	if payload.Requirements.Must, err = parseConstraintFlags(resolveMust); err != nil {
		return payload, err
	}
	if payload.Requirements.Prefer, err = parseConstraintFlags(resolvePrefer); err != nil {
		return payload, err
	}
	if payload.Requirements.Forbid, err = parseConstraintFlags(resolveForbid); err != nil {
		return payload, err
	}
	if payload.Requirements.Hints, err = parseConstraintFlags(resolveHints); err != nil {
		return payload, err
	}
	return payload, nil
}

func printOutcome(capability string, outcome *core.ResolutionOutcome) {
	if outcome.Resolved {
		hop := outcome.Plan.Hops[0]
		logSuccess("resolved %s via %s (%s, domain %s)",
			bold(capability), bold(hop.ProviderID), hop.Tier, hop.DomainID)
		fmt.Printf("  %s %s\n", faint("Route ID:"), outcome.Plan.ID)
		fmt.Printf("  %s %s\n", faint("Bundle:  "), outcome.Plan.BundleHash)
		fmt.Printf("  %s %s (in %s)\n", faint("Expires: "),
			outcome.Plan.ExpiresAt.Format(time.RFC3339),
			time.Until(outcome.Plan.ExpiresAt).Round(time.Second))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Hop", "Provider", "Domain", "Tier", "TTL", "Proofs", "Constraints"})
		for _, hop := range outcome.Plan.Hops {
			var constraints []string
			if hop.RequireEncryption {
				constraints = append(constraints, "encrypt")
			}
			if hop.RequireRedaction {
				constraints = append(constraints, "redact:"+hop.RedactionPolicy)
			}
			proofs := make([]string, 0, len(hop.Proofs))
			for _, proof := range hop.Proofs {
				proofs = append(proofs, string(proof))
			}
			t.AppendRow(table.Row{
				hop.Index,
				hop.ProviderID,
				hop.DomainID,
				hop.Tier,
				hop.TTL,
				joinOrDash(proofs),
				joinOrDash(constraints),
			})
		}
		applyTableFormat(t)
		t.Render()
		return
	}

	log.Error().Msgf("%s could not resolve %s: %s", redCross, bold(capability), outcome.FailureCode)
	for _, failure := range outcome.PerTier {
		note := failure.Note
		if note != "" {
			note = " (" + note + ")"
		}
		fmt.Printf("  %s %s: %s%s\n", redCross, failure.Tier, failure.Code, note)
	}
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveClass, "class", "", "Data classification (public, internal, confidential, restricted)")
	resolveCmd.Flags().StringVar(&resolveSLA, "sla", "", "SLA expression over the winning candidate's attributes")
	resolveCmd.Flags().StringArrayVar(&resolveMust, "must", nil, "Hard constraint key=value (repeatable)")
	resolveCmd.Flags().StringArrayVar(&resolvePrefer, "prefer", nil, "Soft preference key=value (repeatable)")
	resolveCmd.Flags().StringArrayVar(&resolveForbid, "forbid", nil, "Exclusion key=value (repeatable)")
	resolveCmd.Flags().StringArrayVar(&resolveHints, "hint", nil, "Ranking hint key=value (repeatable)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the raw resolution outcome as JSON")
}
