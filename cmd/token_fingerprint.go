package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/attest"
)

var fingerprintRaw bool

var tokenFingerprintCmd = &cobra.Command{
	Use:     "fingerprint TOKEN-FILE",
	Aliases: []string{"fp"},
	Short:   "Calculate the fingerprint of a capability token",
	Long: `Calculates the canonical fingerprint of a token (SHA-256 of the canonical
	encoding, base64). This is the value stored in the audit log's
	'token_fingerprint' field, so it links a token file to the resolutions
	that used it.`,
	Example: `  # Fingerprint a token file
  omniroute token fingerprint token.json

  # Fingerprint a token from stdin
  omniroute token mint ... | omniroute token fingerprint -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readTokenArg(args[0])
		if err != nil {
			return err
		}

		fp := attest.Fingerprint(token)
		if fp == "" {
			return fmt.Errorf("token has no canonical form")
		}

		if fingerprintRaw {
			fmt.Println(fp)
		} else {
			fmt.Println("Subject:    ", token.Subject)
			fmt.Println("Fingerprint:", fp)
		}
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenFingerprintCmd)

	tokenFingerprintCmd.Flags().BoolVarP(&fingerprintRaw, "raw", "r", false,
		"Output only the fingerprint value without additional text")
}
