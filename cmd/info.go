package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OmniNode-ai/omniroute/internal/api"
	"github.com/OmniNode-ai/omniroute/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the OmniRoute installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if f.RemoteAddr == "" && viper.GetString(RouteAddrKey) == "" {
			return infoLocally(cmd, args)
		}
		return infoRemote(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoRemote(cmd *cobra.Command, _ []string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}
	log.Info().Msg("Fetching build info from server...")
	info, correlation, err := cli.Info(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to get info from server")
	}
	printInfo(info)
	return nil
}

func infoLocally(_ *cobra.Command, _ []string) error {
	log.Info().Msg("Showing local build info...")
	printInfo(&api.InfoResponse{Info: buildinfo.GetBuildInfo()})
	return nil
}

func printInfo(info *api.InfoResponse) {
	fmt.Println(bold("\n── OmniRoute Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
	if info.BundleHash != "" {
		fmt.Println(bold("\n── Active Policy Bundle ──"))
		fmt.Printf("  %s:    %s\n", faint("Version"), info.BundleVersion)
		fmt.Printf("  %s:       %s\n", faint("Hash"), info.BundleHash)
		fmt.Printf("  %s:    %d\n", faint("Domains"), info.Domains)
	}
}
