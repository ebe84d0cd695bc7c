package core

import (
	"fmt"
	"time"
)

// RedactionPolicy names a set of attribute fields that must be redacted
// before data crosses the hop it is attached to.
type RedactionPolicy struct {
	Name   string   `json:"name" yaml:"name"`
	Fields []string `json:"fields" yaml:"fields"`
}

func (p *RedactionPolicy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("redaction policy name must not be empty")
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("redaction policy %q: at least one field required", p.Name)
	}
	return nil
}

// ClassificationGate restricts which tiers may serve one classification and
// declares the obligations a permitted hop carries. An empty AllowedTiers
// list blocks the classification entirely.
type ClassificationGate struct {
	Classification    Classification `json:"classification" yaml:"classification"`
	AllowedTiers      []Tier         `json:"allowed_tiers" yaml:"allowed_tiers"`
	RequireEncryption bool           `json:"require_encryption" yaml:"require_encryption"`
	RequireRedaction  bool           `json:"require_redaction" yaml:"require_redaction"`
	RedactionPolicy   string         `json:"redaction_policy,omitempty" yaml:"redaction_policy,omitempty"`
}

// Allows reports whether the gate permits the tier.
func (g *ClassificationGate) Allows(tier Tier) bool {
	for _, t := range g.AllowedTiers {
		if t == tier {
			return true
		}
	}
	return false
}

func (g *ClassificationGate) Validate() error {
	if !g.Classification.Valid() {
		return fmt.Errorf("gate: unknown classification %q", g.Classification)
	}
	for _, t := range g.AllowedTiers {
		if !t.Valid() {
			return fmt.Errorf("gate %q: unknown tier %q", g.Classification, t)
		}
	}
	if g.RequireRedaction && g.RedactionPolicy == "" {
		return fmt.Errorf("gate %q: require_redaction set without a redaction policy", g.Classification)
	}
	return nil
}

// TrustPolicy carries the bundle-wide route lifetime limits. Attested hops
// get the remaining token lifetime clamped to MaxRouteTTL; purely local hops
// get DefaultRouteTTL.
type TrustPolicy struct {
	DefaultRouteTTL time.Duration `json:"default_route_ttl" yaml:"default_route_ttl"`
	MaxRouteTTL     time.Duration `json:"max_route_ttl" yaml:"max_route_ttl"`
}

func (p *TrustPolicy) Validate() error {
	if p.DefaultRouteTTL <= 0 {
		return fmt.Errorf("trust policy: default_route_ttl must be positive")
	}
	if p.MaxRouteTTL < p.DefaultRouteTTL {
		return fmt.Errorf("trust policy: max_route_ttl must not be below default_route_ttl")
	}
	return nil
}

// PolicyBundle is the immutable policy aggregate. Hash is the content hash
// computed at load and stamps every route plan for audit.
type PolicyBundle struct {
	Version     string               `json:"version" yaml:"version"`
	TrustPolicy TrustPolicy          `json:"trust_policy" yaml:"trust_policy"`
	Gates       []ClassificationGate `json:"gates" yaml:"gates"`

	// DefaultGate, when present, applies to classifications without a
	// dedicated gate. Without it, an ungated classification is denied.
	DefaultGate *ClassificationGate `json:"default_gate,omitempty" yaml:"default_gate,omitempty"`

	Redactions []RedactionPolicy `json:"redactions,omitempty" yaml:"redactions,omitempty"`

	Hash string `json:"hash,omitempty" yaml:"-"`
}

// Gate returns the gate for a classification: the dedicated gate if one is
// declared, otherwise the bundle's default gate, otherwise nil.
func (b *PolicyBundle) Gate(c Classification) *ClassificationGate {
	for i := range b.Gates {
		if b.Gates[i].Classification == c {
			return &b.Gates[i]
		}
	}
	return b.DefaultGate
}

// Redaction returns the named redaction policy, or nil.
func (b *PolicyBundle) Redaction(name string) *RedactionPolicy {
	for i := range b.Redactions {
		if b.Redactions[i].Name == name {
			return &b.Redactions[i]
		}
	}
	return nil
}

// Validate enforces the bundle configuration invariants: at most one gate
// per classification, known tiers and classifications, resolvable redaction
// references, sane trust policy. Violations abort loading.
func (b *PolicyBundle) Validate() error {
	if b.Version == "" {
		return fmt.Errorf("bundle version must not be empty")
	}
	if err := b.TrustPolicy.Validate(); err != nil {
		return err
	}
	seen := make(map[Classification]bool, len(b.Gates))
	for i := range b.Gates {
		g := &b.Gates[i]
		if err := g.Validate(); err != nil {
			return err
		}
		if seen[g.Classification] {
			return fmt.Errorf("duplicate classification gate %q", g.Classification)
		}
		seen[g.Classification] = true
	}
	if b.DefaultGate != nil {
		if b.DefaultGate.Classification != "" {
			return fmt.Errorf("default gate must not name a classification")
		}
		for _, t := range b.DefaultGate.AllowedTiers {
			if !t.Valid() {
				return fmt.Errorf("default gate: unknown tier %q", t)
			}
		}
		if b.DefaultGate.RequireRedaction && b.DefaultGate.RedactionPolicy == "" {
			return fmt.Errorf("default gate: require_redaction set without a redaction policy")
		}
	}
	names := make(map[string]bool, len(b.Redactions))
	for i := range b.Redactions {
		r := &b.Redactions[i]
		if err := r.Validate(); err != nil {
			return err
		}
		if names[r.Name] {
			return fmt.Errorf("duplicate redaction policy %q", r.Name)
		}
		names[r.Name] = true
	}
	for i := range b.Gates {
		g := &b.Gates[i]
		if g.RedactionPolicy != "" && !names[g.RedactionPolicy] {
			return fmt.Errorf("gate %q references unknown redaction policy %q", g.Classification, g.RedactionPolicy)
		}
	}
	if b.DefaultGate != nil && b.DefaultGate.RedactionPolicy != "" && !names[b.DefaultGate.RedactionPolicy] {
		return fmt.Errorf("default gate references unknown redaction policy %q", b.DefaultGate.RedactionPolicy)
	}
	return nil
}

// GateDecision is the evaluator's answer for one (classification, tier)
// pair. Obligations are only meaningful when Allowed is true.
type GateDecision struct {
	Allowed           bool   `json:"allowed"`
	RequireEncryption bool   `json:"require_encryption,omitempty"`
	RequireRedaction  bool   `json:"require_redaction,omitempty"`
	RedactionPolicy   string `json:"redaction_policy,omitempty"`
}
