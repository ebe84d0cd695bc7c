package tasks

import (
	"context"

	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/logging"
	"github.com/OmniNode-ai/omniroute/internal/metrics"
	"github.com/OmniNode-ai/omniroute/internal/policy"
	"github.com/OmniNode-ai/omniroute/internal/source"
)

const (
	BundleSyncTaskName = "bundle-sync"
	RouteSweepTaskName = "route-sweep"
)

// BundleSync re-fetches the policy bundle and swaps it into the manager. A
// failed fetch or swap leaves the active bundle untouched.
func BundleSync(fetcher source.Fetcher, manager *policy.Manager, m *metrics.Metrics) TaskFunc {
	return func(ctx context.Context, logger logging.InternalLogger) error {
		bundle, err := fetcher.Fetch(ctx, logger)
		if err != nil {
			return err
		}

		previous := manager.Bundle()
		if previous != nil && previous.Hash == bundle.Hash {
			logger.Debug("Bundle unchanged (%s)", bundle.Hash)
			return nil
		}

		if err := manager.Update(bundle); err != nil {
			return err
		}
		m.BundleSwapped()
		if previous != nil {
			logger.Info("Swapped bundle %s -> %s", previous.Hash, bundle.Hash)
		} else {
			logger.Info("Activated bundle %s", bundle.Hash)
		}
		return nil
	}
}

// RouteSweep deletes expired route plans from the store and refreshes the
// active-routes gauge.
func RouteSweep(store core.RouteStore, m *metrics.Metrics) TaskFunc {
	return func(ctx context.Context, logger logging.InternalLogger) error {
		deleted, err := store.DeleteExpired(ctx)
		if err != nil {
			return err
		}
		active, err := store.ListActive(ctx)
		if err != nil {
			return err
		}
		m.SetActiveRoutes(len(active))
		if deleted > 0 {
			logger.Info("Deleted %d expired route plans, %d active", deleted, len(active))
		} else {
			logger.Debug("No expired route plans")
		}
		return nil
	}
}
