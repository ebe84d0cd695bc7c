package registry

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

type fileConfig struct {
	Path string `mapstructure:"path"`
}

// registryFile is the on-disk registry document.
type registryFile struct {
	Providers []providerEntry `yaml:"providers"`
}

// FileSource serves candidates from a registry YAML file. Reload re-reads
// the file and swaps the snapshot atomically; a failed reload keeps the
// previous snapshot.
type FileSource struct {
	path string
	keys core.KeyProvider
	snap atomic.Pointer[snapshot]
}

// NewFile builds a file source and performs the initial load.
func NewFile(cfg config.RegistryConfig, keys core.KeyProvider) (*FileSource, error) {
	var conf fileConfig

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
	if conf.Path == "" {
		return nil, fmt.Errorf("file registry requires a path")
	}

	src := &FileSource{path: conf.Path, keys: keys}
	if err := src.Reload(); err != nil {
		return nil, err
	}
	return src, nil
}

// Reload re-reads the registry file. On any error the active snapshot stays
// in place.
func (s *FileSource) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading registry file: %w", err)
	}
	var doc registryFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing registry file: %w", err)
	}
	snap, err := buildSnapshot(doc.Providers, s.keys)
	if err != nil {
		return fmt.Errorf("validating registry file: %w", err)
	}
	s.snap.Store(snap)
	return nil
}

func (s *FileSource) ListCandidates(_ context.Context, domainID, capability string) ([]core.ProviderDescriptor, error) {
	return s.snap.Load().list(domainID, capability), nil
}
