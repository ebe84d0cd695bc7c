package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OmniNode-ai/omniroute/internal/cliconfig"
	"github.com/OmniNode-ai/omniroute/pkg/client"
)

var loginNoVerify bool

var loginCmd = &cobra.Command{
	Use:   "login TOKEN",
	Short: "Store an admin token for an OmniRoute server",
	Long: `Saves an admin bearer token locally so admin commands (audit, routes,
	tasks) can authenticate. The token is checked against the server before
	it is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loginToken := args[0]
		if loginToken == "" {
			return fmt.Errorf("token cannot be empty")
		}

		server := f.RemoteAddr
		if server == "" {
			server = viper.GetString(RouteAddrKey)
		}
		if server == "" {
			return fmt.Errorf("server address not configured, provide via --server or env")
		}
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("parsing server URL: %w", err)
		}

		if !loginNoVerify {
			cli := client.New(server, client.WithAuthToken(loginToken))

			log.Info().Msgf("Checking token against server %q...", u.Host)
			if _, correlationID, err := cli.ListRoutes(cmd.Context()); err != nil {
				log.Error().Msgf("%s token rejected by server (correlation ID: %s)", redCross, correlationID)
				log.Error().Msgf("error: %v", err)
				return BeQuietError{}
			}
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = &cliconfig.CLIConfig{}
		}
		if err := cfg.SetCredential(server, loginToken); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "login succeeded but could not save credentials")
		}

		logSuccess("saved credentials for %s", bold(u.Host))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().BoolVar(&loginNoVerify, "no-verify", false, "Save the token without checking it against the server")
}
