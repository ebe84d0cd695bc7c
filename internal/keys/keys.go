// Package keys provides the key providers that hand the verifier its domain
// trust roots and node identity keys. Keys are consumed here, never minted;
// an unknown id yields nil so the verifier can fail closed on its own terms.
package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// BuildProvider constructs the configured key provider. The deployment's
// trust domains seed the domain roots in every mode, so a domain's inline
// public_key never has to be repeated in the keys block.
func BuildProvider(cfg config.KeysConfig, domains *core.DomainSet) (core.KeyProvider, error) {
	switch cfg.Type {
	case "", "static":
		provider, err := NewStatic(cfg, domains)
		if err != nil {
			return nil, fmt.Errorf("building static key provider: %w", err)
		}
		return provider, nil
	case "dir":
		provider, err := NewDir(cfg, domains)
		if err != nil {
			return nil, fmt.Errorf("building dir key provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown keys type %q", cfg.Type)
	}
}

func decodeKey(owner, encoded string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid key encoding: %w", owner, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%s: key must be %d bytes, got %d", owner, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// domainRoots extracts the trust roots already present in the domain
// configuration.
func domainRoots(domains *core.DomainSet) (map[string]ed25519.PublicKey, error) {
	roots := make(map[string]ed25519.PublicKey)
	if domains == nil {
		return roots, nil
	}
	for _, domain := range domains.All() {
		root, err := domain.TrustRoot()
		if err != nil {
			return nil, err
		}
		if root != nil {
			roots[domain.ID] = root
		}
	}
	return roots, nil
}
