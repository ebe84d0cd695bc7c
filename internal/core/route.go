package core

import "time"

// FailureCode is the closed set of per-tier resolution failure reasons.
// Exactly one code accompanies every failed attempt at a tier;
// FailureTierExhausted is reserved for the terminal outcome.
type FailureCode string

const (
	FailureNoMatch            FailureCode = "NO_MATCH"
	FailureInsufficientTrust  FailureCode = "MATCH_INSUFFICIENT_TRUST"
	FailurePolicyDenied       FailureCode = "POLICY_DENIED"
	FailureKeyMismatch        FailureCode = "KEY_MISMATCH"
	FailureAttestationInvalid FailureCode = "ATTESTATION_INVALID"
	FailureSLANotMet          FailureCode = "SLA_NOT_MET"
	FailureTierExhausted      FailureCode = "TIER_EXHAUSTED"
)

// TierFailure records why one tier was passed over during escalation.
type TierFailure struct {
	Tier Tier        `json:"tier"`
	Code FailureCode `json:"code"`
	Note string      `json:"note,omitempty"`
}

// RouteHop is one step of a successful resolution. Hops are appended in
// resolution order and never mutated afterwards.
type RouteHop struct {
	Index      int         `json:"index"`
	ProviderID string      `json:"provider_id"`
	DomainID   string      `json:"domain_id"`
	Tier       Tier        `json:"tier"`
	Proofs     []ProofType `json:"proofs,omitempty"`

	// TokenFingerprint identifies the capability token that attested this
	// hop, when one was verified. Empty for local hops.
	TokenFingerprint string `json:"token_fingerprint,omitempty"`

	// Per-hop constraints copied from the classification gate.
	TTL               time.Duration  `json:"ttl"`
	RequireEncryption bool           `json:"require_encryption,omitempty"`
	RequireRedaction  bool           `json:"require_redaction,omitempty"`
	RedactionPolicy   string         `json:"redaction_policy,omitempty"`
	Classification    Classification `json:"classification"`
}

// RoutePlan is the serializable record of how a dependency was satisfied.
// It carries no live handles, so it can be audited, stored and replayed by a
// downstream dispatcher.
type RoutePlan struct {
	ID         string     `json:"id"`
	Capability string     `json:"capability"`
	Hops       []RouteHop `json:"hops"`
	BundleHash string     `json:"policy_bundle_hash"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// ResolutionOutcome is the resolver's answer: either a route plan or a
// terminal failure with the full per-tier trail. Failures are data, not
// errors; resolution never throws for a deniable request.
type ResolutionOutcome struct {
	Resolved    bool          `json:"resolved"`
	Plan        *RoutePlan    `json:"plan,omitempty"`
	FailureCode FailureCode   `json:"failure_code,omitempty"`
	PerTier     []TierFailure `json:"per_tier,omitempty"`
}
