package source

import (
	"context"
	"fmt"

	"github.com/google/go-github/v80/github"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/ghapp"
	"github.com/OmniNode-ai/omniroute/internal/logging"
	"github.com/OmniNode-ai/omniroute/internal/policy"
)

// GitHubFetcher pulls the bundle file from a repository via a GitHub App
// installation. The bundle stays a single document so its content hash keeps
// meaning; there is deliberately no multi-file merge here.
type GitHubFetcher struct {
	cfg config.GitHubSourceConfig
}

func NewGitHubFetcher(cfg config.GitHubSourceConfig) (*GitHubFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid GitHub source config: %w", err)
	}
	return &GitHubFetcher{cfg: cfg}, nil
}

func (f *GitHubFetcher) Fetch(ctx context.Context, logger logging.InternalLogger) (*core.PolicyBundle, error) {
	logger.Info("Starting GitHub bundle sync for repo %s/%s (ref: %s)", f.cfg.Owner, f.cfg.Repo, f.cfg.Ref)

	gh, err := ghapp.InstallationClient(ctx, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("installation auth failed: %w", err)
	}

	logger.Debug("Fetching %s @ %s...", f.cfg.Path, f.cfg.Ref)
	fileContent, _, _, err := gh.Repositories.GetContents(ctx, f.cfg.Owner, f.cfg.Repo, f.cfg.Path, &github.RepositoryContentGetOptions{
		Ref: f.cfg.Ref,
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f.cfg.Path, err)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode content %s: %w", f.cfg.Path, err)
	}

	bundle, err := policy.Parse([]byte(content))
	if err != nil {
		logger.Error("Bundle in %s failed validation: %v", f.cfg.Path, err)
		return nil, fmt.Errorf("invalid bundle in %s: %w", f.cfg.Path, err)
	}

	logger.Info("Fetch complete. Bundle %s (version %s, %d gates)", bundle.Hash, bundle.Version, len(bundle.Gates))
	return bundle, nil
}
