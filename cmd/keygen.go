package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var keygenOutFile string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 trust-root keypair",
	Long: `Generates a fresh Ed25519 keypair. The public key goes into a trust
	domain's 'public_key' field; the seed stays with the domain operator and
	signs capability tokens (omniroute token mint).`,
	Example: `  # Print both halves
  omniroute keygen

  # Keep the seed in a file, print only the public key
  omniroute keygen --out org.key`,
	RunE: func(cmd *cobra.Command, args []string) error {
		public, private, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return fmt.Errorf("generating keypair: %w", err)
		}

		encodedPublic := base64.StdEncoding.EncodeToString(public)
		encodedSeed := base64.StdEncoding.EncodeToString(private.Seed())

		if keygenOutFile != "" {
			if err := os.WriteFile(keygenOutFile, []byte(encodedSeed+"\n"), 0600); err != nil {
				return fmt.Errorf("writing seed file: %w", err)
			}
			logSuccess("seed written to %s", bold(keygenOutFile))
			fmt.Println("Public key:", encodedPublic)
			return nil
		}

		log.Warn().Msg("The seed signs tokens in your domain's name. Keep it private.")
		fmt.Println("Public key:", encodedPublic)
		fmt.Println("Seed:      ", encodedSeed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenOutFile, "out", "o", "", "Write the seed to a file (0600) instead of stdout")
}
