// Package source fetches policy bundles from wherever a deployment keeps
// them. A fetcher returns a fully validated bundle or an error; swapping the
// active bundle is the caller's job, so a failed fetch can never tear down a
// working policy.
package source

import (
	"context"
	"fmt"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/logging"
)

type Fetcher interface {
	Fetch(ctx context.Context, log logging.InternalLogger) (*core.PolicyBundle, error)
}

// Build constructs the configured bundle fetcher. fallbackPath is the
// top-level bundle path, used by a file source without its own path.
func Build(cfg *config.BundleSource, fallbackPath string) (Fetcher, error) {
	switch {
	case cfg.GitHub != nil:
		fetcher, err := NewGitHubFetcher(*cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("building github fetcher: %w", err)
		}
		return fetcher, nil
	case cfg.File != nil:
		path := cfg.File.Path
		if path == "" {
			path = fallbackPath
		}
		if path == "" {
			return nil, fmt.Errorf("file bundle source requires a path")
		}
		return NewFileFetcher(path), nil
	default:
		return nil, fmt.Errorf("no valid bundle source configured")
	}
}
