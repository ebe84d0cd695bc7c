package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/attest"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/keys"
)

var verifyCapability string

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify TOKEN-FILE",
	Short: "Verify a capability token against a deployment's trust roots",
	Long: `Runs the full verification chain on a token: issuer domain known,
	signature valid under the domain's trust root, not expired, capability
	covered. The server config supplies the domains and key material.`,
	Example: `  omniroute token verify -c omniroute.yaml token.json

  # expected capability differs from the token's pattern
  omniroute token verify -c omniroute.yaml --capability cache.redis token.json

  # token from stdin
  omniroute token mint ... | omniroute token verify -c omniroute.yaml -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readTokenArg(args[0])
		if err != nil {
			return err
		}

		cfg, err := f.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		domains, err := core.NewDomainSet(cfg.Domains)
		if err != nil {
			return fmt.Errorf("building domain set: %w", err)
		}
		keyProvider, err := keys.BuildProvider(cfg.Keys, domains)
		if err != nil {
			return fmt.Errorf("building key provider: %w", err)
		}

		expected := verifyCapability
		if expected == "" {
			expected = token.Capability
		}

		verifier := attest.NewVerifier(domains, keyProvider, core.SystemClock{})
		result := verifier.Verify(token, expected)

		fmt.Printf("Subject:     %s\n", token.Subject)
		fmt.Printf("Issuer:      %s\n", token.IssuerDomain)
		fmt.Printf("Capability:  %s\n", token.Capability)
		fmt.Printf("Fingerprint: %s\n", attest.Fingerprint(token))
		for _, note := range result.Notes {
			fmt.Printf("  %s\n", faint(note))
		}

		if !result.Verified {
			return logError(fmt.Errorf("%s", result.Code), "", "token verification failed")
		}
		logSuccess("token verified (%s)", result.ProofType)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenVerifyCmd)

	tokenVerifyCmd.Flags().StringVar(&verifyCapability, "capability", "", "Capability to check coverage for (defaults to the token's own pattern)")
	f.bindConfigFlag(tokenVerifyCmd.Flags())
}
