package cmd

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/attest"
)

var (
	mintSeedFile   string
	mintSubject    string
	mintDomain     string
	mintCapability string
	mintTTL        time.Duration
	mintOutFile    string
)

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Sign a capability token with an Ed25519 seed",
	Long: `Mints a capability attestation: a signed claim that a provider may serve
	a capability, issued by a trust domain. The seed file holds the domain's
	base64-encoded Ed25519 seed (see omniroute keygen).`,
	Example: `  omniroute token mint --seed org.key \
    --subject redis-eu-1 --domain org.acme --capability 'cache.*' --ttl 720h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readSeedFile(mintSeedFile)
		if err != nil {
			return err
		}

		now := time.Now()
		token, err := attest.Mint(attest.MintRequest{
			Subject:      mintSubject,
			IssuerDomain: mintDomain,
			Capability:   mintCapability,
			IssuedAt:     now,
			Expiry:       now.Add(mintTTL),
		}, key)
		if err != nil {
			return fmt.Errorf("minting token: %w", err)
		}

		log.Debug().Msg("Token minted successfully")
		log.Info().Msgf("Fingerprint: %s", attest.Fingerprint(token))

		out := os.Stdout
		if mintOutFile != "" {
			out, err = os.OpenFile(mintOutFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
			if err != nil {
				return fmt.Errorf("opening output file: %w", err)
			}
			defer func() {
				_ = out.Close()
			}()
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(token)
	},
}

// readSeedFile loads a base64-encoded Ed25519 seed and derives the private
// key from it.
func readSeedFile(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	seed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func init() {
	tokenCmd.AddCommand(tokenMintCmd)

	tokenMintCmd.Flags().StringVar(&mintSeedFile, "seed", "", "File holding the issuer's base64 Ed25519 seed")
	tokenMintCmd.Flags().StringVar(&mintSubject, "subject", "", "Provider the token attests (e.g. redis-eu-1)")
	tokenMintCmd.Flags().StringVar(&mintDomain, "domain", "", "Issuing trust domain ID")
	tokenMintCmd.Flags().StringVar(&mintCapability, "capability", "", "Capability pattern the token covers")
	tokenMintCmd.Flags().DurationVar(&mintTTL, "ttl", time.Hour, "Token validity duration")
	tokenMintCmd.Flags().StringVarP(&mintOutFile, "out", "o", "", "Write the token to a file instead of stdout")

	_ = tokenMintCmd.MarkFlagRequired("seed")
	_ = tokenMintCmd.MarkFlagRequired("subject")
	_ = tokenMintCmd.MarkFlagRequired("domain")
	_ = tokenMintCmd.MarkFlagRequired("capability")
}
