package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// TrustDomain is one administrative boundary: a hierarchical id like
// "org.omninode", the tier it resolves at, its Ed25519 trust root, and the
// capability patterns it is authorized to serve. Domains are configuration,
// loaded once and read-only for the lifetime of a resolver.
type TrustDomain struct {
	ID   string `json:"id" yaml:"id"`
	Tier Tier   `json:"tier" yaml:"tier"`

	// PublicKey is the base64-encoded Ed25519 trust root. Optional for
	// LOCAL_EXACT domains, which never verify attestations.
	PublicKey string `json:"public_key,omitempty" yaml:"public_key,omitempty"`

	// Capabilities are the glob patterns this domain may serve.
	Capabilities []string `json:"capabilities" yaml:"capabilities"`

	// BundleHash pins the policy bundle governing this domain.
	BundleHash string `json:"bundle_hash,omitempty" yaml:"bundle_hash,omitempty"`
}

// TrustRoot decodes the domain's root public key. Returns nil for a domain
// without a configured key.
func (d *TrustDomain) TrustRoot() (ed25519.PublicKey, error) {
	if d.PublicKey == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(d.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("domain %q: invalid trust root encoding: %w", d.ID, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("domain %q: trust root must be %d bytes, got %d", d.ID, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// Authorizes reports whether the domain's capability patterns cover the
// requested capability.
func (d *TrustDomain) Authorizes(capability string) bool {
	for _, pattern := range d.Capabilities {
		if MatchCapability(pattern, capability) {
			return true
		}
	}
	return false
}

func (d *TrustDomain) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("domain id must not be empty")
	}
	if !d.Tier.Valid() {
		return fmt.Errorf("domain %q: unknown tier %q", d.ID, d.Tier)
	}
	if _, err := d.TrustRoot(); err != nil {
		return err
	}
	if d.Tier != TierLocalExact && d.PublicKey == "" {
		return fmt.Errorf("domain %q: tier %s requires a trust root key", d.ID, d.Tier)
	}
	if len(d.Capabilities) == 0 {
		return fmt.Errorf("domain %q: at least one capability pattern required", d.ID)
	}
	for _, pattern := range d.Capabilities {
		if err := ValidateCapabilityPattern(pattern); err != nil {
			return fmt.Errorf("domain %q: %w", d.ID, err)
		}
	}
	return nil
}

// DomainSet is the immutable trust configuration handed to a resolver at
// construction. Multiple resolvers with different domain sets can coexist in
// one process.
type DomainSet struct {
	byID   map[string]*TrustDomain
	byTier map[Tier][]*TrustDomain
}

// NewDomainSet validates the domains and indexes them by id and tier.
// Duplicate ids are a configuration error.
func NewDomainSet(domains []TrustDomain) (*DomainSet, error) {
	set := &DomainSet{
		byID:   make(map[string]*TrustDomain, len(domains)),
		byTier: make(map[Tier][]*TrustDomain),
	}
	for i := range domains {
		d := domains[i]
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := set.byID[d.ID]; exists {
			return nil, fmt.Errorf("duplicate trust domain %q", d.ID)
		}
		set.byID[d.ID] = &d
		set.byTier[d.Tier] = append(set.byTier[d.Tier], &d)
	}
	return set, nil
}

// ByID returns the domain with the given id, or nil.
func (s *DomainSet) ByID(id string) *TrustDomain {
	return s.byID[id]
}

// AtTier returns the domains registered at a tier, in the order they were
// configured.
func (s *DomainSet) AtTier(tier Tier) []*TrustDomain {
	return s.byTier[tier]
}

// All returns every domain in configuration order grouped by tier order.
func (s *DomainSet) All() []*TrustDomain {
	var out []*TrustDomain
	for _, tier := range TierOrder {
		out = append(out, s.byTier[tier]...)
	}
	return out
}

func (s *DomainSet) Len() int {
	return len(s.byID)
}
