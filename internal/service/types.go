package service

import (
	"fmt"
	"net/http"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

type ResolveRequest struct {
	// Capability is the requested capability pattern, e.g. "cache.redis".
	Capability string

	// Classification of the data that will flow over the route. Empty
	// defaults to "internal".
	Classification string

	// Requirements constrain and rank the candidate providers.
	Requirements core.RequirementSet

	// SLA is an optional expression evaluated against the winning
	// candidate's attributes.
	SLA string
}

// dependency converts the request into a validated resolver input.
func (r ResolveRequest) dependency() (*core.CapabilityDependency, error) {
	classification := core.ClassificationInternal
	if r.Classification != "" {
		parsed, err := core.ParseClassification(r.Classification)
		if err != nil {
			return nil, httpError(http.StatusBadRequest, err)
		}
		classification = parsed
	}

	dep := &core.CapabilityDependency{
		Capability:     r.Capability,
		Requirements:   r.Requirements,
		Classification: classification,
		SLA:            r.SLA,
	}
	if err := dep.Validate(); err != nil {
		return nil, httpError(http.StatusBadRequest, fmt.Errorf("invalid dependency: %w", err))
	}
	return dep, nil
}

type ResolveResponse struct {
	// Outcome is the resolver's verdict, a route plan or the failure trail.
	Outcome *core.ResolutionOutcome

	// CorrelationID ties the response to its audit entry.
	CorrelationID string
}

type ExplainRequest struct {
	ResolveRequest

	// ReplayID selects a past audit entry to re-run instead of the inline
	// request. The trace is computed against the current bundle, so a
	// replay shows how the same request would resolve now.
	ReplayID string
}
