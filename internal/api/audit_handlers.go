package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/OmniNode-ai/omniroute/internal/api/presenter"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// handleAdminAudit processes requests to retrieve audit log entries.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	querier, ok := s.auditor.(core.AuditQuerier)
	if !ok {
		presenter.Error(w, r, "configured auditor does not support queries", http.StatusNotImplemented)
		return
	}

	// filters
	q := r.URL.Query()
	limitStr := q.Get("limit")

	filterCorrelationID := q.Get("correlation_id")
	filterCapability := q.Get("capability")
	filterFingerprint := q.Get("fingerprint")

	limit := 50
	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 {
			logger.Warn().Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = v
	}

	var entries []core.AuditEntry
	var err error

	if filterCorrelationID != "" || filterCapability != "" || filterFingerprint != "" {
		logger.Debug().Msg("applying audit log filters")
		entries, err = querier.Find(func(entry core.AuditEntry) bool {
			if filterCorrelationID != "" && entry.ID != filterCorrelationID {
				return false
			}
			if filterCapability != "" && entry.Capability != filterCapability {
				return false
			}
			if filterFingerprint != "" && entry.TokenFingerprint != filterFingerprint {
				return false
			}
			return true
		}, limit)
	} else {
		logger.Debug().Msg("retrieving recent audit log entries")
		entries, err = querier.GetRecent(limit)
	}

	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}
