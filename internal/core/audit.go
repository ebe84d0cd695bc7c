package core

import "time"

// AuditEntry records one resolution request end to end. Every resolve call
// produces exactly one entry, success or not.
type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID).
	ID string `json:"id"`

	// Time is the timestamp of the event.
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "route.resolve").
	Action string `json:"action"`

	// Request snapshot, complete enough to replay the resolution later.
	Capability     string          `json:"capability"`
	Classification Classification  `json:"classification"`
	Requirements   *RequirementSet `json:"requirements,omitempty"`
	SLA            string          `json:"sla,omitempty"`

	// Outcome details. On success Tier/DomainID/ProviderID/RouteID name
	// the winning hop; on failure FailureCode is set.
	Resolved    bool        `json:"resolved"`
	FailureCode FailureCode `json:"failure_code,omitempty"`
	Tier        Tier        `json:"tier,omitempty"`
	DomainID    string      `json:"domain_id,omitempty"`
	ProviderID  string      `json:"provider_id,omitempty"`
	RouteID     string      `json:"route_id,omitempty"`
	BundleHash  string      `json:"policy_bundle_hash,omitempty"`

	// TokenFingerprint identifies the verified capability token of an
	// attested hop without storing the token itself.
	TokenFingerprint string `json:"token_fingerprint,omitempty"`

	PerTier []TierFailure `json:"per_tier,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Auditor persists audit entries. Implementations must be safe for
// concurrent use.
type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditQuerier is implemented by auditors that can read their entries back,
// for the admin audit endpoint.
type AuditQuerier interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
