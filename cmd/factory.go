package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/OmniNode-ai/omniroute/internal/cliconfig"
	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/pkg/client"
)

// f is the shared factory all commands build their dependencies through.
var f = NewFactory()

type Factory struct {
	// RemoteAddr is the address of the OmniRoute server to connect to.
	RemoteAddr string

	// Command-specific flags
	ConfigPath string // the server configuration => domains, registry, keys
}

func NewFactory() *Factory {
	return &Factory{}
}

// GetClient returns an authenticated HTTP client for remote operations.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.RemoteAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(RouteAddrKey) // prio 2: config/env
	}
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set OMNIROUTE_ADDR)")
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		}
	}

	if envToken := os.Getenv("OMNIROUTE_TOKEN"); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

// LoadServerConfig reads the server configuration named by --config.
func (f *Factory) LoadServerConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		return nil, fmt.Errorf("config file not specified (use --config)")
	}
	return config.Load(f.ConfigPath)
}

func (f *Factory) bindConfigFlag(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "The OmniRoute server config file to use")
}
