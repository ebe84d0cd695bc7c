package api

import (
	"net/http"

	"github.com/OmniNode-ai/omniroute/internal/api/presenter"
	"github.com/OmniNode-ai/omniroute/internal/buildinfo"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type InfoResponse struct {
	buildinfo.Info

	BundleVersion string `json:"bundle_version,omitempty"`
	BundleHash    string `json:"bundle_hash,omitempty"`
	Domains       int    `json:"domains"`
}

// handleInfo responds with service information including version, commit
// hash and the active policy bundle.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := InfoResponse{
		Info:    buildinfo.GetBuildInfo(),
		Domains: s.domains.Len(),
	}
	if bundle := s.policyManager.Bundle(); bundle != nil {
		info.BundleVersion = bundle.Version
		info.BundleHash = bundle.Hash
	}
	presenter.JSON(w, r, info, http.StatusOK)
}

type DomainInfo struct {
	ID           string    `json:"id"`
	Tier         core.Tier `json:"tier"`
	Capabilities []string  `json:"capabilities"`
	HasTrustRoot bool      `json:"has_trust_root"`
}

// handleDomains lists the configured trust domains. Only public metadata is
// exposed, never key material.
func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	all := s.domains.All()
	out := make([]DomainInfo, 0, len(all))
	for _, d := range all {
		out = append(out, DomainInfo{
			ID:           d.ID,
			Tier:         d.Tier,
			Capabilities: d.Capabilities,
			HasTrustRoot: d.PublicKey != "",
		})
	}
	presenter.JSON(w, r, out, http.StatusOK)
}
