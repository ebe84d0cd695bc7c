package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/policy"
)

var bundleValidateFile string

// bundleValidateCmd represents the bundle validate command
var bundleValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a policy bundle file",
	Long: `Parses and validates a policy bundle: trust policy sanity, gate
	completeness and classification uniqueness. When --config is also given,
	the server configuration (domains, registry, keys) is validated too.`,
	Example: `  omniroute bundle validate -f bundle.yaml
  omniroute bundle validate -f bundle.yaml --config omniroute.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := policy.Load(bundleValidateFile)
		if err != nil {
			return logError(err, "", "bundle is invalid")
		}
		logSuccess("bundle %s is valid (%s, %d gates)",
			bold(bundleValidateFile), bundle.Hash, len(bundle.Gates))

		if f.ConfigPath != "" {
			cfg, err := f.LoadServerConfig()
			if err != nil {
				return logError(err, "", "server config is invalid")
			}
			logSuccess("server config %s is valid (%d domains)",
				bold(f.ConfigPath), len(cfg.Domains))
		}

		log.Info().Msg("Validation complete.")
		return nil
	},
}

func init() {
	bundleCmd.AddCommand(bundleValidateCmd)

	bundleValidateCmd.Flags().StringVarP(&bundleValidateFile, "file", "f", "", "The policy bundle file to validate")
	f.bindConfigFlag(bundleValidateCmd.Flags())

	_ = bundleValidateCmd.MarkFlagRequired("file")
}
