// Package resolver implements the tiered resolution walk: for one capability
// dependency it escalates through the trust tiers in fixed order, gating
// each tier on policy, picking the best structural candidate, authenticating
// it, and emitting a route plan on the first verified match.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/attest"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/engine"
	"github.com/OmniNode-ai/omniroute/internal/policy"
)

// Resolver walks trust tiers for one deployment's domain configuration. All
// fields are read-only after construction, so concurrent Resolve calls share
// one instance without locking.
type Resolver struct {
	domains  *core.DomainSet
	source   core.CandidateSource
	verifier *attest.Verifier
	clock    core.Clock
}

func New(domains *core.DomainSet, source core.CandidateSource, verifier *attest.Verifier, clock core.Clock) *Resolver {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Resolver{
		domains:  domains,
		source:   source,
		verifier: verifier,
		clock:    clock,
	}
}

// Resolve walks the tiers for the dependency under the given bundle
// snapshot. The error return is reserved for invalid input and failing
// collaborators; a deniable request is never an error, it is an outcome
// carrying a failure code.
func (r *Resolver) Resolve(ctx context.Context, dep *core.CapabilityDependency, bundle *core.PolicyBundle) (*core.ResolutionOutcome, error) {
	return r.walk(ctx, dep, bundle, nil)
}

// Explain runs the same walk but records every decision into a trace. It
// takes none of Resolve's side effects; the caller must not store or audit
// its outcome as if it were a real resolution.
func (r *Resolver) Explain(ctx context.Context, dep *core.CapabilityDependency, bundle *core.PolicyBundle) (*core.ResolutionTrace, error) {
	trace := &core.ResolutionTrace{
		Capability:     dep.Capability,
		Classification: dep.Classification,
	}
	if bundle != nil {
		trace.BundleHash = bundle.Hash
	}

	outcome, err := r.walk(ctx, dep, bundle, trace)
	if err != nil {
		return nil, err
	}
	trace.Outcome = *outcome
	return trace, nil
}

func (r *Resolver) walk(ctx context.Context, dep *core.CapabilityDependency, bundle *core.PolicyBundle, trace *core.ResolutionTrace) (*core.ResolutionOutcome, error) {
	if dep == nil {
		return nil, fmt.Errorf("dependency required")
	}
	if err := dep.Validate(); err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, fmt.Errorf("no active policy bundle")
	}

	var sla *engine.SLA
	if dep.SLA != "" {
		compiled, err := engine.CompileSLA(dep.SLA)
		if err != nil {
			return nil, err
		}
		sla = compiled
	}

	var trail []core.TierFailure

	for _, tier := range core.TierOrder {
		step := tierStep{tier: tier}

		failure, hop, err := r.tryTier(ctx, dep, bundle, tier, sla, &step)
		if err != nil {
			return nil, err
		}

		if trace != nil {
			trace.Tiers = append(trace.Tiers, step.trace())
		}

		if hop != nil {
			plan := r.buildPlan(dep, bundle, hop)
			return &core.ResolutionOutcome{
				Resolved: true,
				Plan:     plan,
				PerTier:  trail,
			}, nil
		}

		trail = append(trail, *failure)
	}

	return &core.ResolutionOutcome{
		Resolved:    false,
		FailureCode: core.FailureTierExhausted,
		PerTier:     trail,
	}, nil
}

// tierStep collects what happened at one tier for tracing.
type tierStep struct {
	tier         core.Tier
	gate         core.GateDecision
	domains      []string
	ranked       []engine.Ranked
	selected     string
	verification *core.VerificationResult
	slaTrace     *core.SLATrace
	failure      *core.TierFailure
}

func (s *tierStep) trace() core.TierTrace {
	t := core.TierTrace{
		Tier:         s.tier,
		Gate:         s.gate,
		Domains:      s.domains,
		Selected:     s.selected,
		Verification: s.verification,
		SLA:          s.slaTrace,
		Failure:      s.failure,
	}
	for _, ranked := range s.ranked {
		t.Candidates = append(t.Candidates, core.CandidateTrace{
			ProviderID: ranked.Descriptor.ID,
			DomainID:   ranked.DomainID,
			Match:      ranked.Result.Match,
			Score:      ranked.Result.Score,
			Hints:      ranked.Result.Hints,
			Warnings:   ranked.Result.Warnings,
		})
	}
	return t
}

func (s *tierStep) fail(code core.FailureCode, note string) *core.TierFailure {
	s.failure = &core.TierFailure{Tier: s.tier, Code: code, Note: note}
	return s.failure
}

// tryTier runs one tier of the state machine. It returns either a winning
// hop or the tier's failure; an error aborts the whole resolution and is
// reserved for failing collaborators.
func (r *Resolver) tryTier(ctx context.Context, dep *core.CapabilityDependency, bundle *core.PolicyBundle, tier core.Tier, sla *engine.SLA, step *tierStep) (*core.TierFailure, *core.RouteHop, error) {
	// Policy precedes resolution: a denied tier is never searched, so a
	// candidate there can never leak into a route plan.
	step.gate = policy.Check(dep.Classification, tier, bundle)
	if !step.gate.Allowed {
		return step.fail(core.FailurePolicyDenied,
			fmt.Sprintf("classification %q not permitted at tier %s", dep.Classification, tier)), nil, nil
	}

	domains := append([]*core.TrustDomain(nil), r.domains.AtTier(tier)...)
	sort.Slice(domains, func(i, j int) bool { return domains[i].ID < domains[j].ID })

	var pool []engine.PoolEntry
	for _, domain := range domains {
		step.domains = append(step.domains, domain.ID)
		candidates, err := r.source.ListCandidates(ctx, domain.ID, dep.Capability)
		if err != nil {
			return nil, nil, fmt.Errorf("candidate source failed for domain %q: %w", domain.ID, err)
		}
		for _, descriptor := range candidates {
			pool = append(pool, engine.PoolEntry{DomainID: domain.ID, Descriptor: descriptor})
		}
	}

	selection := engine.Select(dep, pool)
	step.ranked = selection.Ranked
	if selection.Best == nil {
		note := "no candidates at this tier"
		switch {
		case len(selection.Ranked) > 0:
			note = "no candidate satisfied the requirement set"
		case len(pool) > 0:
			note = "no candidate declares the capability"
		}
		return step.fail(core.FailureNoMatch, note), nil, nil
	}

	best := selection.Best
	step.selected = best.Descriptor.ID

	domain := r.domains.ByID(best.DomainID)
	if !domain.Authorizes(dep.Capability) {
		return step.fail(core.FailureInsufficientTrust,
			fmt.Sprintf("domain %q is not authorized to serve %q", domain.ID, dep.Capability)), nil, nil
	}

	var proofs []core.ProofType
	var fingerprint string
	if tier != core.TierLocalExact {
		result := r.verifier.Verify(best.Descriptor.Token, dep.Capability)
		step.verification = &result
		if !result.Verified {
			note := "attestation rejected"
			if len(result.Notes) > 0 {
				note = result.Notes[0]
			}
			return step.fail(result.Code, note), nil, nil
		}
		proofs = []core.ProofType{result.ProofType}
		fingerprint = attest.Fingerprint(best.Descriptor.Token)
	}

	if sla != nil {
		ok, note := sla.Evaluate(&best.Descriptor)
		step.slaTrace = &core.SLATrace{Expression: sla.Expression(), Satisfied: ok, Note: note}
		if !ok {
			return step.fail(core.FailureSLANotMet, note), nil, nil
		}
	}

	hop := &core.RouteHop{
		ProviderID:        best.Descriptor.ID,
		DomainID:          best.DomainID,
		Tier:              tier,
		Proofs:            proofs,
		TokenFingerprint:  fingerprint,
		TTL:               r.hopTTL(tier, best.Descriptor.Token, bundle),
		RequireEncryption: step.gate.RequireEncryption,
		RequireRedaction:  step.gate.RequireRedaction,
		RedactionPolicy:   step.gate.RedactionPolicy,
		Classification:    dep.Classification,
	}
	return nil, hop, nil
}

// hopTTL derives the hop lifetime: attested hops live for the remaining
// token lifetime clamped to the bundle maximum, purely local hops get the
// bundle default.
func (r *Resolver) hopTTL(tier core.Tier, token *core.CapabilityToken, bundle *core.PolicyBundle) time.Duration {
	if tier == core.TierLocalExact || token == nil {
		return bundle.TrustPolicy.DefaultRouteTTL
	}
	remaining := token.Expiry.Sub(r.clock.Now())
	if remaining > bundle.TrustPolicy.MaxRouteTTL {
		return bundle.TrustPolicy.MaxRouteTTL
	}
	return remaining
}

func (r *Resolver) buildPlan(dep *core.CapabilityDependency, bundle *core.PolicyBundle, hop *core.RouteHop) *core.RoutePlan {
	hop.Index = 0
	now := r.clock.Now()
	return &core.RoutePlan{
		Capability: dep.Capability,
		Hops:       []core.RouteHop{*hop},
		BundleHash: bundle.Hash,
		CreatedAt:  now,
		ExpiresAt:  now.Add(hop.TTL),
	}
}
