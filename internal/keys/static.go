package keys

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

type staticConfig struct {
	// Roots maps domain id -> base64 Ed25519 trust root. Entries override
	// the keys inherited from the domain configuration.
	Roots map[string]string `mapstructure:"roots"`

	// Nodes maps provider id -> base64 Ed25519 identity key.
	Nodes map[string]string `mapstructure:"nodes"`
}

// StaticProvider serves keys from configuration. All lookups are reads on
// immutable maps, safe for concurrent use.
type StaticProvider struct {
	roots map[string]ed25519.PublicKey
	nodes map[string]ed25519.PublicKey
}

// NewStatic builds a static key provider from the inline keys config plus
// the domain trust roots.
func NewStatic(cfg config.KeysConfig, domains *core.DomainSet) (*StaticProvider, error) {
	var conf staticConfig

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

	roots, err := domainRoots(domains)
	if err != nil {
		return nil, err
	}
	for domainID, encoded := range conf.Roots {
		root, err := decodeKey(fmt.Sprintf("root %q", domainID), encoded)
		if err != nil {
			return nil, err
		}
		roots[domainID] = root
	}

	nodes := make(map[string]ed25519.PublicKey, len(conf.Nodes))
	for nodeID, encoded := range conf.Nodes {
		key, err := decodeKey(fmt.Sprintf("node %q", nodeID), encoded)
		if err != nil {
			return nil, err
		}
		nodes[nodeID] = key
	}

	return &StaticProvider{roots: roots, nodes: nodes}, nil
}

func (p *StaticProvider) GetDomainTrustRoot(domainID string) ed25519.PublicKey {
	return p.roots[domainID]
}

func (p *StaticProvider) GetNodeIdentityKey(nodeID string) ed25519.PublicKey {
	return p.nodes[nodeID]
}
