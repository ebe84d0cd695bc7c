package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Capability token commands",
	Long: `Mint, verify and fingerprint Ed25519 capability tokens locally.
	The server only ever consumes tokens; issuing them is operator tooling.`,
}

// readTokenArg reads a capability token from a JSON file, or from stdin
// when the argument is "-".
func readTokenArg(arg string) (*core.CapabilityToken, error) {
	path := arg
	if arg == "-" {
		path = "/dev/stdin"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	var token core.CapabilityToken
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &token); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return &token, nil
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
