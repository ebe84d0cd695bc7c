package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// HealthStatus is the registry-owned liveness of a provider.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

func (h HealthStatus) Valid() bool {
	switch h {
	case HealthHealthy, HealthDegraded, HealthUnhealthy:
		return true
	}
	return false
}

// Routable reports whether the provider may be offered as a candidate.
// Degraded providers stay routable; only unhealthy ones are withheld.
func (h HealthStatus) Routable() bool {
	return h == HealthHealthy || h == HealthDegraded
}

// ProviderDescriptor is a candidate as the registry publishes it. The
// resolver borrows read access during a single resolution and never mutates
// a descriptor.
type ProviderDescriptor struct {
	ID           string               `json:"id" yaml:"id"`
	Capabilities []string             `json:"capabilities" yaml:"capabilities"`
	Health       HealthStatus         `json:"health" yaml:"health"`
	Attributes   map[string]AttrValue `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// IdentityKey is the provider's published node key (base64 Ed25519),
	// cross-checked against the key provider at registry load.
	IdentityKey string `json:"identity_key,omitempty" yaml:"identity_key,omitempty"`

	// Token is the capability attestation presented by the provider.
	// Required for any candidate outside LOCAL_EXACT.
	Token *CapabilityToken `json:"token,omitempty" yaml:"token,omitempty"`
}

// DeclaresCapability reports whether any declared capability pattern matches
// the requested capability.
func (p *ProviderDescriptor) DeclaresCapability(capability string) bool {
	for _, pattern := range p.Capabilities {
		if MatchCapability(pattern, capability) {
			return true
		}
	}
	return false
}

// Attr looks up a typed attribute.
func (p *ProviderDescriptor) Attr(key string) (AttrValue, bool) {
	v, ok := p.Attributes[key]
	return v, ok
}

// DecodeIdentityKey returns the provider's node key bytes, or nil when none
// is published.
func (p *ProviderDescriptor) DecodeIdentityKey() (ed25519.PublicKey, error) {
	if p.IdentityKey == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(p.IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("provider %q: invalid identity key encoding: %w", p.ID, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("provider %q: identity key must be %d bytes, got %d", p.ID, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

func (p *ProviderDescriptor) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("provider id must not be empty")
	}
	if len(p.Capabilities) == 0 {
		return fmt.Errorf("provider %q: at least one capability required", p.ID)
	}
	for _, pattern := range p.Capabilities {
		if err := ValidateCapabilityPattern(pattern); err != nil {
			return fmt.Errorf("provider %q: %w", p.ID, err)
		}
	}
	if p.Health != "" && !p.Health.Valid() {
		return fmt.Errorf("provider %q: unknown health status %q", p.ID, p.Health)
	}
	if _, err := p.DecodeIdentityKey(); err != nil {
		return err
	}
	return nil
}
