package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/OmniNode-ai/omniroute/internal/api/presenter"
)

// handleAdminRoutes processes requests to retrieve active route plans.
func (s *Server) handleAdminRoutes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	plans, err := s.routeStore.ListActive(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve active routes")
		presenter.Error(w, r, "failed to retrieve active routes", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, plans, http.StatusOK)
}
