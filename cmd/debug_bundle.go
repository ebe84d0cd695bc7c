package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/policy"
)

var debugBundleFile string

var debugBundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Dump a parsed policy bundle",
	Long: `Loads a policy bundle file and dumps the fully parsed structure,
	including the computed hash and the normalized gate constraints.`,
	Example: `  omniroute debug bundle -f bundle.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := policy.Load(debugBundleFile)
		if err != nil {
			return fmt.Errorf("loading bundle: %w", err)
		}

		log.Info().Msgf("Bundle %s (%s)", bold(bundle.Version), bundle.Hash)
		fmt.Print(spew.Sdump(bundle))
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugBundleCmd)

	debugBundleCmd.Flags().StringVarP(&debugBundleFile, "file", "f", "", "The policy bundle file to dump")
	_ = debugBundleCmd.MarkFlagRequired("file")
}
