package registry

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

type staticConfig struct {
	Providers []providerEntry `mapstructure:"providers"`
}

// StaticSource serves candidates from the inline provider list in the server
// configuration. The snapshot never changes after construction.
type StaticSource struct {
	snap *snapshot
}

// NewStatic builds a static source from the inline registry config.
func NewStatic(cfg config.RegistryConfig, keys core.KeyProvider) (*StaticSource, error) {
	var conf staticConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &conf,
	})
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(cfg.Config); err != nil {
		return nil, fmt.Errorf("decoding registry config: %w", err)
	}

	snap, err := buildSnapshot(conf.Providers, keys)
	if err != nil {
		return nil, err
	}
	return &StaticSource{snap: snap}, nil
}

func (s *StaticSource) ListCandidates(_ context.Context, domainID, capability string) ([]core.ProviderDescriptor, error) {
	return s.snap.list(domainID, capability), nil
}
