package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OmniNode-ai/omniroute/internal/api"
	"github.com/OmniNode-ai/omniroute/internal/api/middleware"
	"github.com/OmniNode-ai/omniroute/internal/attest"
	"github.com/OmniNode-ai/omniroute/internal/audit"
	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/keys"
	"github.com/OmniNode-ai/omniroute/internal/logging"
	"github.com/OmniNode-ai/omniroute/internal/metrics"
	"github.com/OmniNode-ai/omniroute/internal/policy"
	"github.com/OmniNode-ai/omniroute/internal/registry"
	"github.com/OmniNode-ai/omniroute/internal/resolver"
	"github.com/OmniNode-ai/omniroute/internal/service"
	"github.com/OmniNode-ai/omniroute/internal/source"
	"github.com/OmniNode-ai/omniroute/internal/store"
	"github.com/OmniNode-ai/omniroute/internal/tasks"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the OmniRoute resolution server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := f.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr == "" {
			addr = cfg.Listen
		}
		if addr == "" {
			addr = ":8080"
		}

		clock := core.SystemClock{}

		domains, err := core.NewDomainSet(cfg.Domains)
		if err != nil {
			return fmt.Errorf("building domain set: %w", err)
		}

		log.Info().Msg("Initializing key provider...")
		keyProvider, err := keys.BuildProvider(cfg.Keys, domains)
		if err != nil {
			return fmt.Errorf("building key provider: %w", err)
		}

		log.Info().Msg("Initializing candidate registry...")
		candidates, err := registry.BuildSource(cfg.Registry, keyProvider)
		if err != nil {
			return fmt.Errorf("building candidate registry: %w", err)
		}

		var fetcher source.Fetcher
		if cfg.BundleSource != nil {
			fetcher, err = source.Build(cfg.BundleSource, cfg.Bundle)
			if err != nil {
				return fmt.Errorf("building bundle source: %w", err)
			}
		}

		bundle, err := loadInitialBundle(cmd.Context(), cfg, fetcher)
		if err != nil {
			return fmt.Errorf("loading policy bundle: %w", err)
		}
		policyManager, err := policy.NewManager(bundle)
		if err != nil {
			return fmt.Errorf("activating policy bundle: %w", err)
		}
		log.Info().Msgf("Activated policy bundle %s (%s)", bundle.Version, bundle.Hash)

		auditor, err := audit.Build(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Warn().Err(err).Msg("closing auditor")
			}
		}()

		routeStore := store.NewInMemoryRouteStore(clock)
		verifier := attest.NewVerifier(domains, keyProvider, clock)
		res := resolver.New(domains, candidates, verifier, clock)
		m := metrics.New()
		resolution := service.NewResolutionService(res, policyManager, auditor, routeStore, m, clock)

		taskManager := tasks.NewManager()
		if fetcher != nil {
			taskManager.Register(tasks.BundleSyncTaskName, cfg.BundleSource.Sync.Interval,
				tasks.BundleSync(fetcher, policyManager, m))
		}
		if cfg.Routes.SweepInterval > 0 {
			taskManager.Register(tasks.RouteSweepTaskName, cfg.Routes.SweepInterval,
				tasks.RouteSweep(routeStore, m))
		}

		adminAuth, err := middleware.BuildAuthenticator(cmd.Context(), cfg.AdminAuth)
		if err != nil {
			return fmt.Errorf("building admin authenticator: %w", err)
		}

		srv := api.NewServer(cfg, policyManager, taskManager, domains, auditor, routeStore, m, resolution)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(adminAuth),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

// loadInitialBundle prefers the local bundle file and falls back to a
// synchronous fetch from the configured source, so the server never starts
// without an active policy.
func loadInitialBundle(ctx context.Context, cfg *config.Config, fetcher source.Fetcher) (*core.PolicyBundle, error) {
	if cfg.Bundle != "" {
		return policy.Load(cfg.Bundle)
	}
	if fetcher != nil {
		return fetcher.Fetch(ctx, logging.NewZLogger(log.Logger))
	}
	return nil, fmt.Errorf("no bundle path or bundle_source configured")
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (defaults to the config's listen address)")
	f.bindConfigFlag(serveCmd.Flags())
}
