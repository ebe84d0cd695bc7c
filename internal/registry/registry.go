// Package registry provides the candidate sources a resolver draws
// providers from. A source answers "which providers does domain D publish
// for capability pattern P" and nothing else; ranking and verification stay
// with the resolver.
package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// BuildSource constructs the configured candidate source. The key provider
// is consulted at load to cross-check published identity keys.
func BuildSource(cfg config.RegistryConfig, keys core.KeyProvider) (core.CandidateSource, error) {
	switch cfg.Type {
	case "", "static":
		src, err := NewStatic(cfg, keys)
		if err != nil {
			return nil, fmt.Errorf("building static registry: %w", err)
		}
		return src, nil
	case "file":
		src, err := NewFile(cfg, keys)
		if err != nil {
			return nil, fmt.Errorf("building file registry: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown registry type %q", cfg.Type)
	}
}

// providerEntry is the registry wire form of one provider, shared by the
// static (inline config) and file sources.
type providerEntry struct {
	Domain       string         `yaml:"domain" mapstructure:"domain"`
	ID           string         `yaml:"id" mapstructure:"id"`
	Capabilities []string       `yaml:"capabilities" mapstructure:"capabilities"`
	Health       string         `yaml:"health" mapstructure:"health"`
	IdentityKey  string         `yaml:"identity_key" mapstructure:"identity_key"`
	Attributes   map[string]any `yaml:"attributes" mapstructure:"attributes"`
	Token        *tokenEntry    `yaml:"token" mapstructure:"token"`
}

type tokenEntry struct {
	Subject      string `yaml:"subject" mapstructure:"subject"`
	IssuerDomain string `yaml:"issuer_domain" mapstructure:"issuer_domain"`
	Capability   string `yaml:"capability" mapstructure:"capability"`
	IssuedAt     string `yaml:"issued_at" mapstructure:"issued_at"`
	Expiry       string `yaml:"expiry" mapstructure:"expiry"`
	PublicKey    string `yaml:"public_key" mapstructure:"public_key"`
	Signature    string `yaml:"signature" mapstructure:"signature"`
}

func (t *tokenEntry) toToken() (*core.CapabilityToken, error) {
	issuedAt, err := time.Parse(time.RFC3339, t.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid issued_at: %w", err)
	}
	expiry, err := time.Parse(time.RFC3339, t.Expiry)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry: %w", err)
	}
	return &core.CapabilityToken{
		Subject:      t.Subject,
		IssuerDomain: t.IssuerDomain,
		Capability:   t.Capability,
		IssuedAt:     issuedAt,
		Expiry:       expiry,
		PublicKey:    t.PublicKey,
		Signature:    t.Signature,
	}, nil
}

func (e *providerEntry) toDescriptor() (core.ProviderDescriptor, error) {
	descriptor := core.ProviderDescriptor{
		ID:           e.ID,
		Capabilities: e.Capabilities,
		Health:       core.HealthStatus(e.Health),
		IdentityKey:  e.IdentityKey,
	}
	if descriptor.Health == "" {
		descriptor.Health = core.HealthHealthy
	}
	if len(e.Attributes) > 0 {
		descriptor.Attributes = make(map[string]core.AttrValue, len(e.Attributes))
		for key, raw := range e.Attributes {
			value, err := core.ParseAttrValue(raw)
			if err != nil {
				return descriptor, fmt.Errorf("attribute %q: %w", key, err)
			}
			descriptor.Attributes[key] = value
		}
	}
	if e.Token != nil {
		token, err := e.Token.toToken()
		if err != nil {
			return descriptor, fmt.Errorf("token: %w", err)
		}
		descriptor.Token = token
	}
	return descriptor, nil
}

// snapshot is an immutable domain -> providers index. Sources swap whole
// snapshots; readers never see a partially built one.
type snapshot struct {
	byDomain map[string][]core.ProviderDescriptor
}

// buildSnapshot validates every entry, cross-checks published identity keys
// against the key provider, and indexes by domain. Any conflict is a
// configuration error that fails the whole load.
func buildSnapshot(entries []providerEntry, keys core.KeyProvider) (*snapshot, error) {
	snap := &snapshot{byDomain: make(map[string][]core.ProviderDescriptor)}
	seen := make(map[string]string, len(entries))

	for i, entry := range entries {
		if entry.Domain == "" {
			return nil, fmt.Errorf("provider at index %d has no domain", i)
		}
		descriptor, err := entry.toDescriptor()
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", entry.ID, err)
		}
		if err := descriptor.Validate(); err != nil {
			return nil, err
		}
		if prev, dup := seen[descriptor.ID]; dup {
			return nil, fmt.Errorf("provider id %q registered for both %q and %q", descriptor.ID, prev, entry.Domain)
		}
		seen[descriptor.ID] = entry.Domain

		if descriptor.IdentityKey != "" && keys != nil {
			published, err := descriptor.DecodeIdentityKey()
			if err != nil {
				return nil, err
			}
			if known := keys.GetNodeIdentityKey(descriptor.ID); known != nil && !known.Equal(published) {
				return nil, fmt.Errorf("provider %q: published identity key does not match the key provider record", descriptor.ID)
			}
		}

		snap.byDomain[entry.Domain] = append(snap.byDomain[entry.Domain], descriptor)
	}

	for domain := range snap.byDomain {
		providers := snap.byDomain[domain]
		sort.Slice(providers, func(i, j int) bool { return providers[i].ID < providers[j].ID })
	}
	return snap, nil
}

// list filters one domain's providers down to routable candidates declaring
// the capability.
func (s *snapshot) list(domainID, capability string) []core.ProviderDescriptor {
	var out []core.ProviderDescriptor
	for _, descriptor := range s.byDomain[domainID] {
		if !descriptor.Health.Routable() {
			continue
		}
		if !descriptor.DeclaresCapability(capability) {
			continue
		}
		out = append(out, descriptor)
	}
	return out
}
