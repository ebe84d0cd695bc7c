package source

import (
	"context"

	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/logging"
	"github.com/OmniNode-ai/omniroute/internal/policy"
)

// FileFetcher re-reads a bundle file from disk, so policy edits take effect
// on the next sync without a restart.
type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Fetch(_ context.Context, logger logging.InternalLogger) (*core.PolicyBundle, error) {
	logger.Debug("Reading bundle file %s...", f.path)

	bundle, err := policy.Load(f.path)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded bundle %s (version %s, %d gates)", bundle.Hash, bundle.Version, len(bundle.Gates))
	return bundle, nil
}
