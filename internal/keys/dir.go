package keys

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

type dirConfig struct {
	Path string `mapstructure:"path"`
}

// DirProvider reads keys from a directory: one "<domain>.pub" file per
// domain trust root and one "<node>.key.pub" file per node identity, each
// holding a base64 Ed25519 public key. The directory is read once at build.
type DirProvider struct {
	roots map[string]ed25519.PublicKey
	nodes map[string]ed25519.PublicKey
}

// NewDir builds a dir key provider from the configured path plus the domain
// trust roots.
func NewDir(cfg config.KeysConfig, domains *core.DomainSet) (*DirProvider, error) {
	var conf dirConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &conf,
	})
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(cfg.Config); err != nil {
		return nil, fmt.Errorf("decoding keys config: %w", err)
	}
	if conf.Path == "" {
		return nil, fmt.Errorf("dir key provider requires a path")
	}

	roots, err := domainRoots(domains)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]ed25519.PublicKey)

	entries, err := os.ReadDir(conf.Path)
	if err != nil {
		return nil, fmt.Errorf("reading key directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".pub") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(conf.Path, name))
		if err != nil {
			return nil, fmt.Errorf("reading key file %q: %w", name, err)
		}
		encoded := strings.TrimSpace(string(data))

		if nodeID, ok := strings.CutSuffix(name, ".key.pub"); ok {
			key, err := decodeKey(fmt.Sprintf("node %q", nodeID), encoded)
			if err != nil {
				return nil, err
			}
			nodes[nodeID] = key
			continue
		}

		domainID := strings.TrimSuffix(name, ".pub")
		root, err := decodeKey(fmt.Sprintf("root %q", domainID), encoded)
		if err != nil {
			return nil, err
		}
		roots[domainID] = root
	}

	return &DirProvider{roots: roots, nodes: nodes}, nil
}

func (p *DirProvider) GetDomainTrustRoot(domainID string) ed25519.PublicKey {
	return p.roots[domainID]
}

func (p *DirProvider) GetNodeIdentityKey(nodeID string) ed25519.PublicKey {
	return p.nodes[nodeID]
}
