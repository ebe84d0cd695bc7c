package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/api"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

var whyReplayID string

var whyCmd = &cobra.Command{
	Use:   "why [CAPABILITY]",
	Short: "Explain why a capability resolves (or does not resolve)",
	Long: `Runs the resolution walk on the server without side effects and returns a
	detailed per-tier trace: gate decisions, candidate scoring, token
	verification and SLA checks.

Note: This command requires an OmniRoute server to be running and reachable.`,
	Example: `  # Why does this request escalate past the local tier?
  omniroute why cache.redis --class confidential --must region=eu-west-1

  # Replay a past request from the audit trail against the current bundle
  omniroute why --replay d0s3kf09a28dqrrimieg`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && whyReplayID == "" {
			return fmt.Errorf("either a capability or --replay is required")
		}

		var payload api.ExplainPayload
		payload.ReplayID = whyReplayID
		if len(args) > 0 {
			resolvePayload, err := buildResolvePayload(args[0])
			if err != nil {
				return err
			}
			payload.ResolvePayload = resolvePayload
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		trace, correlation, err := cli.Explain(cmd.Context(), payload)
		if err != nil {
			return logError(err, correlation, "explain request failed")
		}

		printTrace(trace)
		return nil
	},
}

func printTrace(trace *core.ResolutionTrace) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Printf("\n%s for %s (classification: %s)\n",
		bold("Resolution Trace"),
		bold(trace.Capability),
		trace.Classification)
	if trace.ReplayOf != "" {
		fmt.Printf("Replay of audit entry %s\n", cyan(trace.ReplayOf))
	}
	fmt.Printf("Bundle: %s\n", faint(trace.BundleHash))

	fmt.Println(faint("---------------------------------------------------"))

	for _, tier := range trace.Tiers {
		icon := red("✖")
		if tier.Failure == nil {
			icon = green("✔")
		}
		fmt.Printf("%s Tier: %s\n", icon, bold(tier.Tier))

		if tier.Gate.Allowed {
			var extras string
			if tier.Gate.RequireEncryption {
				extras += " +encrypt"
			}
			if tier.Gate.RequireRedaction {
				extras += " +redact(" + tier.Gate.RedactionPolicy + ")"
			}
			fmt.Printf("  %s gate allowed%s\n", green("✔"), faint(extras))
		} else {
			fmt.Printf("  %s gate denied\n", red("✖"))
		}

		for _, candidate := range tier.Candidates {
			candIcon := red("✖")
			if candidate.Match {
				candIcon = green("✔")
			}
			fmt.Printf("  %s %s (%s) score=%.2f\n",
				candIcon, candidate.ProviderID, faint(candidate.DomainID), candidate.Score)
			for _, warning := range candidate.Warnings {
				fmt.Printf("      %s\n", yellow(warning))
			}
		}

		if tier.Selected != "" {
			fmt.Printf("  %s selected: %s\n", cyan("→"), bold(tier.Selected))
		}

		if tier.Verification != nil {
			if tier.Verification.Verified {
				fmt.Printf("  %s attestation verified (%s)\n", green("✔"), tier.Verification.ProofType)
			} else {
				fmt.Printf("  %s attestation rejected: %s\n", red("✖"), tier.Verification.Code)
				for _, note := range tier.Verification.Notes {
					fmt.Printf("      %s\n", faint(note))
				}
			}
		}

		if tier.SLA != nil {
			slaIcon := red("✖")
			if tier.SLA.Satisfied {
				slaIcon = green("✔")
			}
			fmt.Printf("  %s sla: %s\n", slaIcon, tier.SLA.Expression)
			if tier.SLA.Note != "" {
				fmt.Printf("      %s\n", faint(tier.SLA.Note))
			}
		}

		if tier.Failure != nil {
			note := ""
			if tier.Failure.Note != "" {
				note = " " + faint("("+tier.Failure.Note+")")
			}
			fmt.Printf("  %s %s%s\n", red("✖"), tier.Failure.Code, note)
		}
	}

	fmt.Println(faint("---------------------------------------------------"))
	if trace.Outcome.Resolved {
		hop := trace.Outcome.Plan.Hops[0]
		fmt.Printf("Decision: %s via %s at tier %s\n",
			bold(green("resolved")), bold(hop.ProviderID), bold(hop.Tier))
	} else {
		fmt.Printf("Decision: %s (%s)\n", bold(red("unresolved")), trace.Outcome.FailureCode)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyCmd.Flags().StringVar(&whyReplayID, "replay", "", "Replay a past resolution by audit entry ID")
	whyCmd.Flags().StringVar(&resolveClass, "class", "", "Data classification (public, internal, confidential, restricted)")
	whyCmd.Flags().StringVar(&resolveSLA, "sla", "", "SLA expression over the winning candidate's attributes")
	whyCmd.Flags().StringArrayVar(&resolveMust, "must", nil, "Hard constraint key=value (repeatable)")
	whyCmd.Flags().StringArrayVar(&resolvePrefer, "prefer", nil, "Soft preference key=value (repeatable)")
	whyCmd.Flags().StringArrayVar(&resolveForbid, "forbid", nil, "Exclusion key=value (repeatable)")
	whyCmd.Flags().StringArrayVar(&resolveHints, "hint", nil, "Ranking hint key=value (repeatable)")
}
