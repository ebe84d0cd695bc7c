package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/keys"
	"github.com/OmniNode-ai/omniroute/internal/registry"
)

var debugAttrsCmd = &cobra.Command{
	Use:     "attrs CAPABILITY",
	Aliases: []string{"attributes"},
	Short:   "Dump the provider descriptors declaring a capability",
	Long: `Loads the server configuration, builds the candidate registry the way
	the server would, and dumps every routable descriptor that declares the
	capability, per domain. Useful to see exactly which attributes and
	tokens the matcher works with, and to debug NO_MATCH outcomes.`,
	Example: `  omniroute debug attrs cache.redis -c omniroute.yaml`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capability := args[0]

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
		source, err := registry.BuildSource(cfg.Registry, keyProvider)
		if err != nil {
			return fmt.Errorf("building candidate registry: %w", err)
		}

		for _, domain := range domains.All() {
			descriptors, err := source.ListCandidates(cmd.Context(), domain.ID, capability)
			if err != nil {
				return fmt.Errorf("listing candidates of %q: %w", domain.ID, err)
			}
			log.Info().Msgf("Domain %s (%s): %d routable providers declare %q",
				bold(domain.ID), domain.Tier, len(descriptors), capability)
			if len(descriptors) > 0 {
				fmt.Print(spew.Sdump(descriptors))
			}
		}
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugAttrsCmd)

	f.bindConfigFlag(debugAttrsCmd.Flags())
}
