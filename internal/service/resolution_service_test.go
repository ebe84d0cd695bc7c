package service

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/attest"
	"github.com/OmniNode-ai/omniroute/internal/audit"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/metrics"
	"github.com/OmniNode-ai/omniroute/internal/policy"
	"github.com/OmniNode-ai/omniroute/internal/resolver"
	"github.com/OmniNode-ai/omniroute/internal/store"
)

var testNow = time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	byDomain map[string][]core.ProviderDescriptor
}

func (s *stubSource) ListCandidates(_ context.Context, domainID, pattern string) ([]core.ProviderDescriptor, error) {
	var out []core.ProviderDescriptor
	for _, d := range s.byDomain[domainID] {
		if d.Health.Routable() && d.DeclaresCapability(pattern) {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubKeys struct {
	roots map[string]ed25519.PublicKey
}

func (s stubKeys) GetDomainTrustRoot(domainID string) ed25519.PublicKey {
	return s.roots[domainID]
}

func (s stubKeys) GetNodeIdentityKey(string) ed25519.PublicKey { return nil }

type fixture struct {
	service *ResolutionService
	source  *stubSource
	auditor *audit.InMemoryAuditor
	routes  core.RouteStore
	orgKey  ed25519.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 7
	}
	orgKey := ed25519.NewKeyFromSeed(seed)
	orgPub := base64.StdEncoding.EncodeToString(orgKey.Public().(ed25519.PublicKey))

	domains, err := core.NewDomainSet([]core.TrustDomain{
		{ID: "local.default", Tier: core.TierLocalExact, Capabilities: []string{"*"}},
		{ID: "org.omninode", Tier: core.TierOrg, PublicKey: orgPub, Capabilities: []string{"cache.*"}},
	})
	if err != nil {
		t.Fatalf("NewDomainSet() error = %v", err)
	}

	keys := stubKeys{roots: map[string]ed25519.PublicKey{
		"org.omninode": orgKey.Public().(ed25519.PublicKey),
	}}

	bundle := &core.PolicyBundle{
		Version: "test",
		Hash:    "sha256:test",
		TrustPolicy: core.TrustPolicy{
			DefaultRouteTTL: 5 * time.Minute,
			MaxRouteTTL:     time.Hour,
		},
		Gates: []core.ClassificationGate{
			{Classification: core.ClassificationPublic, AllowedTiers: core.TierOrder},
			{
				Classification: core.ClassificationInternal,
				AllowedTiers:   []core.Tier{core.TierLocalExact, core.TierLocalCompatible, core.TierOrg},
			},
		},
	}
	policies, err := policy.NewManager(bundle)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	clock := core.ClockFunc(func() time.Time { return testNow })
	source := &stubSource{byDomain: map[string][]core.ProviderDescriptor{}}
	auditor := audit.NewInMemoryAuditor()
	routes := store.NewInMemoryRouteStore(clock)

	res := resolver.New(domains, source, attest.NewVerifier(domains, keys, clock), clock)

	return &fixture{
		service: NewResolutionService(res, policies, auditor, routes, metrics.New(), clock),
		source:  source,
		auditor: auditor,
		routes:  routes,
		orgKey:  orgKey,
	}
}

func (f *fixture) addOrgProvider(t *testing.T, id string) {
	t.Helper()
	token, err := attest.Mint(attest.MintRequest{
		Subject:      id,
		IssuerDomain: "org.omninode",
		Capability:   "cache.*",
		IssuedAt:     testNow.Add(-time.Minute),
		Expiry:       testNow.Add(30 * time.Minute),
	}, f.orgKey)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	f.source.byDomain["org.omninode"] = append(f.source.byDomain["org.omninode"],
		core.ProviderDescriptor{
			ID:           id,
			Capabilities: []string{"cache.redis"},
			Health:       core.HealthHealthy,
			Token:        token,
		})
}

func correlated(id string) context.Context {
	return context.WithValue(context.Background(), "correlation_id", id)
}

func TestResolveStampsPlanAndWritesAudit(t *testing.T) {
	f := newFixture(t)
	f.addOrgProvider(t, "redis-org-1")

	resp, err := f.service.Resolve(correlated("req-1"), ResolveRequest{
		Capability:     "cache.redis",
		Classification: "public",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !resp.Outcome.Resolved {
		t.Fatalf("Resolve() not resolved: %+v", resp.Outcome.PerTier)
	}
	if resp.CorrelationID != "req-1" {
		t.Errorf("CorrelationID = %q, want req-1", resp.CorrelationID)
	}

	plan := resp.Outcome.Plan
	if plan.ID == "" {
		t.Error("plan must be stamped with an ID")
	}

	active, err := f.routes.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 1 || active[0].ID != plan.ID {
		t.Errorf("route store = %+v, want the stamped plan", active)
	}

	entries, err := f.auditor.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.ID != "req-1" || entry.Action != "route.resolve" {
		t.Errorf("entry = %+v", entry)
	}
	if !entry.Resolved || entry.RouteID != plan.ID || entry.ProviderID != "redis-org-1" {
		t.Errorf("entry outcome = %+v", entry)
	}
	if entry.Tier != core.TierOrg || entry.DomainID != "org.omninode" {
		t.Errorf("entry hop = tier %s domain %s", entry.Tier, entry.DomainID)
	}
	if entry.TokenFingerprint == "" {
		t.Error("attested resolution must record the token fingerprint")
	}
	if entry.BundleHash != "sha256:test" {
		t.Errorf("BundleHash = %q", entry.BundleHash)
	}
}

func TestResolveGeneratesCorrelationID(t *testing.T) {
	f := newFixture(t)
	f.addOrgProvider(t, "redis-org-1")

	resp, err := f.service.Resolve(context.Background(), ResolveRequest{
		Capability:     "cache.redis",
		Classification: "public",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resp.CorrelationID == "" {
		t.Fatal("service must generate a correlation ID when the context has none")
	}

	entries, _ := f.auditor.GetRecent(1)
	if len(entries) != 1 || entries[0].ID != resp.CorrelationID {
		t.Errorf("audit entry ID = %v, want %q", entries, resp.CorrelationID)
	}
}

func TestResolveFailureIsDataNotError(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Resolve(correlated("req-2"), ResolveRequest{
		Capability:     "cache.redis",
		Classification: "public",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want exhausted outcome", err)
	}
	if resp.Outcome.Resolved || resp.Outcome.FailureCode != core.FailureTierExhausted {
		t.Errorf("Outcome = %+v", resp.Outcome)
	}

	entries, _ := f.auditor.GetRecent(1)
	if len(entries) != 1 {
		t.Fatal("failed resolution must still be audited")
	}
	if entries[0].Resolved || entries[0].FailureCode != core.FailureTierExhausted {
		t.Errorf("entry = %+v", entries[0])
	}
	if len(entries[0].PerTier) == 0 {
		t.Error("entry must carry the per-tier trail")
	}

	active, _ := f.routes.ListActive(context.Background())
	if len(active) != 0 {
		t.Errorf("failed resolution must not persist a plan, got %d", len(active))
	}
}

func TestResolveRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	f.addOrgProvider(t, "redis-org-1")

	tests := []struct {
		name string
		req  ResolveRequest
	}{
		{"empty capability", ResolveRequest{Classification: "public"}},
		{"unknown classification", ResolveRequest{Capability: "cache.redis", Classification: "secret"}},
		{"malformed sla", ResolveRequest{Capability: "cache.redis", Classification: "public", SLA: "latency_ms <"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Resolve(context.Background(), tc.req)
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Resolve() error = %v, want HTTPError", err)
			}
			if httpErr.StatusCode != http.StatusBadRequest {
				t.Errorf("StatusCode = %d, want 400", httpErr.StatusCode)
			}
		})
	}

	entries, _ := f.auditor.GetRecent(10)
	if len(entries) != len(tests) {
		t.Fatalf("audit entries = %d, want %d", len(entries), len(tests))
	}
	for _, entry := range entries {
		if entry.Error == "" {
			t.Errorf("rejected request must audit the error, entry = %+v", entry)
		}
	}
}

func TestResolveWithoutBundle(t *testing.T) {
	f := newFixture(t)
	f.service.policies = &policy.Manager{}

	_, err := f.service.Resolve(context.Background(), ResolveRequest{
		Capability:     "cache.redis",
		Classification: "public",
	})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Resolve() error = %v, want 503", err)
	}
}

func TestExplainTakesNoSideEffects(t *testing.T) {
	f := newFixture(t)
	f.addOrgProvider(t, "redis-org-1")

	trace, err := f.service.Explain(context.Background(), ExplainRequest{
		ResolveRequest: ResolveRequest{Capability: "cache.redis", Classification: "public"},
	})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if !trace.Outcome.Resolved {
		t.Fatalf("trace outcome = %+v", trace.Outcome)
	}
	if trace.ReplayOf != "" {
		t.Errorf("ReplayOf = %q, want empty for live explain", trace.ReplayOf)
	}

	if entries, _ := f.auditor.GetRecent(10); len(entries) != 0 {
		t.Errorf("explain must not audit, got %d entries", len(entries))
	}
	if active, _ := f.routes.ListActive(context.Background()); len(active) != 0 {
		t.Errorf("explain must not persist plans, got %d", len(active))
	}
}

func TestExplainReplaysAuditEntry(t *testing.T) {
	f := newFixture(t)
	f.addOrgProvider(t, "redis-org-1")

	requirements := core.RequirementSet{
		Must: map[string]core.Constraint{
			"region": {Op: core.OpEq, Value: core.StringAttr("eu-west-1")},
		},
	}
	f.source.byDomain["org.omninode"][0].Attributes = map[string]core.AttrValue{
		"region": core.StringAttr("eu-west-1"),
	}

	if _, err := f.service.Resolve(correlated("req-replay"), ResolveRequest{
		Capability:     "cache.redis",
		Classification: "public",
		Requirements:   requirements,
	}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	trace, err := f.service.Explain(context.Background(), ExplainRequest{ReplayID: "req-replay"})
	if err != nil {
		t.Fatalf("Explain(replay) error = %v", err)
	}
	if trace.ReplayOf != "req-replay" {
		t.Errorf("ReplayOf = %q", trace.ReplayOf)
	}
	if trace.Capability != "cache.redis" {
		t.Errorf("Capability = %q", trace.Capability)
	}
	if !trace.Outcome.Resolved {
		t.Errorf("replayed trace not resolved: %+v", trace.Outcome)
	}

	_, err = f.service.Explain(context.Background(), ExplainRequest{ReplayID: "req-missing"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("Explain(unknown replay) error = %v, want 404", err)
	}
}

func TestExplainReplayNeedsQueryableAuditor(t *testing.T) {
	f := newFixture(t)
	f.service.auditor = &audit.NoopAuditor{}

	_, err := f.service.Explain(context.Background(), ExplainRequest{ReplayID: "req-1"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotImplemented {
		t.Fatalf("Explain() error = %v, want 501", err)
	}
}
