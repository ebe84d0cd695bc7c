package core

import (
	"context"
	"crypto/ed25519"
	"time"
)

// CandidateSource lists the providers a trust domain can offer for a
// capability. Implementations must answer from memory or cache; the resolver
// calls this synchronously on every tier walk.
type CandidateSource interface {
	// ListCandidates returns the routable descriptors of one domain whose
	// declared capabilities match the pattern.
	ListCandidates(ctx context.Context, domainID, capabilityPattern string) ([]ProviderDescriptor, error)
}

// KeyProvider supplies trust material. A nil key means "verification
// impossible" and must never be retried as transient.
type KeyProvider interface {
	// GetDomainTrustRoot returns the Ed25519 trust root of a domain, or
	// nil when the domain has no known root.
	GetDomainTrustRoot(domainID string) ed25519.PublicKey

	// GetNodeIdentityKey returns the published identity key of a node or
	// provider, or nil when unknown.
	GetNodeIdentityKey(nodeID string) ed25519.PublicKey
}

// Clock is the injected time source. Production uses SystemClock; tests pin
// time with ClockFunc.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// RouteStore keeps issued route plans until they expire.
type RouteStore interface {
	// Save records a newly issued route plan.
	Save(ctx context.Context, plan RoutePlan) error

	// ListActive returns plans that have not expired yet.
	ListActive(ctx context.Context) ([]RoutePlan, error)

	// DeleteExpired drops expired plans and reports how many went.
	DeleteExpired(ctx context.Context) (int64, error)
}
