package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/OmniNode-ai/omniroute/internal/api/presenter"
	"github.com/OmniNode-ai/omniroute/internal/core"
	"github.com/OmniNode-ai/omniroute/internal/service"
)

type ResolvePayload struct {
	// Capability is the requested capability pattern, e.g. "cache.redis".
	Capability string `json:"capability"`

	// Classification of the data flowing over the route. Defaults to
	// "internal" when empty.
	Classification string `json:"classification"`

	// Requirements constrain and rank candidate providers.
	Requirements core.RequirementSet `json:"requirements"`

	// SLA is an optional expression over the winning candidate's
	// attributes.
	SLA string `json:"sla"`
}

type ExplainPayload struct {
	ResolvePayload

	// ReplayID re-runs a past request from the audit trail instead of the
	// inline fields.
	ReplayID string `json:"replay_id"`
}

type ResolveResult struct {
	*core.ResolutionOutcome
	CorrelationID string `json:"correlation_id"`
}

func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	switch r.Header.Get("Content-Type") {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) || !allowEmpty {
				return err
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}

// handleResolve processes resolution requests. An exhausted resolution is a
// valid response, not an HTTP error: the outcome carries the per-tier trail.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload ResolvePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode resolve request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	resp, err := s.resolution.Resolve(ctx, service.ResolveRequest{
		Capability:     payload.Capability,
		Classification: payload.Classification,
		Requirements:   payload.Requirements,
		SLA:            payload.SLA,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("resolution rejected")
		presenter.Err(w, r, err, "resolution failed")
		return
	}

	presenter.JSON(w, r, ResolveResult{
		ResolutionOutcome: resp.Outcome,
		CorrelationID:     resp.CorrelationID,
	}, http.StatusOK)
}

// handleExplain runs the resolution walk in trace mode, without any of the
// resolve side effects.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload ExplainPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode explain request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	trace, err := s.resolution.Explain(ctx, service.ExplainRequest{
		ResolveRequest: service.ResolveRequest{
			Capability:     payload.Capability,
			Classification: payload.Classification,
			Requirements:   payload.Requirements,
			SLA:            payload.SLA,
		},
		ReplayID: payload.ReplayID,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("explain rejected")
		presenter.Err(w, r, err, "explain failed")
		return
	}

	presenter.JSON(w, r, trace, http.StatusOK)
}
