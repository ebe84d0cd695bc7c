package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/engine"
	"github.com/OmniNode-ai/omniroute/internal/metrics"
	"github.com/OmniNode-ai/omniroute/internal/policy"
	"github.com/OmniNode-ai/omniroute/internal/resolver"
)

// ResolutionService is the main service that handles resolution requests.
// It wraps the pure resolver with the side effects a served request needs:
// audit trail, route persistence and instrumentation.
type ResolutionService struct {
	resolver *resolver.Resolver
	policies *policy.Manager
	auditor  core.Auditor
	routes   core.RouteStore
	metrics  *metrics.Metrics
	clock    core.Clock
}

func NewResolutionService(
	res *resolver.Resolver,
	policies *policy.Manager,
	auditor core.Auditor,
	routes core.RouteStore,
	m *metrics.Metrics,
	clock core.Clock,
) *ResolutionService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &ResolutionService{
		resolver: res,
		policies: policies,
		auditor:  auditor,
		routes:   routes,
		metrics:  m,
		clock:    clock,
	}
}

func (s *ResolutionService) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)
	if reqID == "" {
		reqID = xid.New().String()
	}

	auditEntry := core.AuditEntry{
		ID:         reqID,
		Time:       s.clock.Now(),
		Action:     "route.resolve",
		Capability: req.Capability,
		SLA:        req.SLA,
	}
	if !req.Requirements.Empty() {
		auditEntry.Requirements = &req.Requirements
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for resolution")
		}
	}()

	dep, err := req.dependency()
	if err != nil {
		auditEntry.Error = err.Error()
		return nil, err
	}
	auditEntry.Classification = dep.Classification

	if req.SLA != "" {
		if _, err := engine.CompileSLA(req.SLA); err != nil {
			auditEntry.Error = "invalid sla expression"
			return nil, httpError(http.StatusBadRequest, fmt.Errorf("invalid sla expression: %w", err))
		}
	}

	bundle := s.policies.Bundle()
	if bundle == nil {
		auditEntry.Error = "no policy bundle loaded"
		return nil, httpError(http.StatusServiceUnavailable,
			fmt.Errorf("no policy bundle loaded"))
	}
	auditEntry.BundleHash = bundle.Hash

	started := s.clock.Now()
	outcome, err := s.resolver.Resolve(ctx, dep, bundle)
	if err != nil {
		auditEntry.Error = "resolver error"
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("resolver error: %w", err))
	}
	s.metrics.ObserveResolution(outcome, s.clock.Now().Sub(started))

	auditEntry.Resolved = outcome.Resolved
	auditEntry.PerTier = outcome.PerTier

	if !outcome.Resolved {
		auditEntry.FailureCode = outcome.FailureCode
		logger.Info().
			Str("capability", dep.Capability).
			Str("failure_code", string(outcome.FailureCode)).
			Msg("resolution exhausted all tiers")
		return &ResolveResponse{Outcome: outcome, CorrelationID: reqID}, nil
	}

	plan := outcome.Plan
	plan.ID = xid.New().String()

	hop := plan.Hops[0]
	auditEntry.Tier = hop.Tier
	auditEntry.DomainID = hop.DomainID
	auditEntry.ProviderID = hop.ProviderID
	auditEntry.RouteID = plan.ID
	auditEntry.TokenFingerprint = hop.TokenFingerprint

	if err := s.routes.Save(ctx, *plan); err != nil {
		logger.Error().Err(err).Msg("failed to save route plan")
		// the plan is still valid for the caller, only replay bookkeeping
		// is degraded
	} else if active, err := s.routes.ListActive(ctx); err == nil {
		s.metrics.SetActiveRoutes(len(active))
	}

	logger.Info().
		Str("capability", dep.Capability).
		Str("provider", hop.ProviderID).
		Str("tier", string(hop.Tier)).
		Str("route_id", plan.ID).
		Msg("dependency resolved")

	return &ResolveResponse{Outcome: outcome, CorrelationID: reqID}, nil
}

// Explain runs the resolution walk in trace mode. It takes none of the
// resolve side effects: nothing is audited, stored or counted, so clients
// can probe policy freely.
func (s *ResolutionService) Explain(ctx context.Context, req ExplainRequest) (*core.ResolutionTrace, error) {
	logger := log.Ctx(ctx)

	if req.ReplayID != "" {
		replayed, err := s.replayRequest(req.ReplayID)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("replay_id", req.ReplayID).Msg("replaying audit log entry")
		req.ResolveRequest = *replayed
	}

	dep, err := req.dependency()
	if err != nil {
		return nil, err
	}

	bundle := s.policies.Bundle()
	if bundle == nil {
		return nil, httpError(http.StatusServiceUnavailable,
			fmt.Errorf("no policy bundle loaded"))
	}

	trace, err := s.resolver.Explain(ctx, dep, bundle)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("resolver error: %w", err))
	}
	trace.ReplayOf = req.ReplayID
	return trace, nil
}

// replayRequest reconstructs the original resolve request from an audit
// entry. The trace is computed against the current bundle, not the one the
// entry saw, which is the point: replay answers "how would this resolve
// now".
func (s *ResolutionService) replayRequest(replayID string) (*ResolveRequest, error) {
	querier, ok := s.auditor.(core.AuditQuerier)
	if !ok {
		return nil, httpError(http.StatusNotImplemented,
			fmt.Errorf("configured auditor does not support replay"))
	}

	entries, err := querier.Find(func(entry core.AuditEntry) bool {
		return entry.ID == replayID
	}, 1)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("failed to retrieve audit log for replay: %w", err))
	}
	if len(entries) == 0 {
		return nil, httpError(http.StatusNotFound,
			fmt.Errorf("audit log entry with ID '%s' not found for replay", replayID))
	}

	entry := entries[0]
	replayed := &ResolveRequest{
		Capability:     entry.Capability,
		Classification: string(entry.Classification),
		SLA:            entry.SLA,
	}
	if entry.Requirements != nil {
		replayed.Requirements = *entry.Requirements
	}
	return replayed, nil
}
