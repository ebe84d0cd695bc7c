package core

// ResolutionTrace is the full record of one resolution walk, produced by the
// explain path. It mirrors what the resolver did without taking any of its
// side effects.
type ResolutionTrace struct {
	Capability     string            `json:"capability"`
	Classification Classification    `json:"classification"`
	BundleHash     string            `json:"policy_bundle_hash"`
	Tiers          []TierTrace       `json:"tiers"`
	Outcome        ResolutionOutcome `json:"outcome"`

	// ReplayOf is the audit entry ID this trace was replayed from, empty
	// for live explain requests.
	ReplayOf string `json:"replay_of,omitempty"`
}

// TierTrace records everything that happened at one tier.
type TierTrace struct {
	Tier    Tier         `json:"tier"`
	Gate    GateDecision `json:"gate"`
	Domains []string     `json:"domains,omitempty"`

	Candidates []CandidateTrace `json:"candidates,omitempty"`

	// Selected is the provider chosen at this tier before verification,
	// empty when no structural match existed.
	Selected string `json:"selected,omitempty"`

	// Verification is set for attested tiers that reached the verifier.
	Verification *VerificationResult `json:"verification,omitempty"`

	// SLA is set when an SLA constraint was evaluated at this tier.
	SLA *SLATrace `json:"sla,omitempty"`

	Failure *TierFailure `json:"failure,omitempty"`
}

// CandidateTrace is the matcher's verdict on one candidate.
type CandidateTrace struct {
	ProviderID string   `json:"provider_id"`
	DomainID   string   `json:"domain_id"`
	Match      bool     `json:"match"`
	Score      float64  `json:"score"`
	Hints      int      `json:"hints,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// SLATrace records the SLA expression verdict for the selected candidate.
type SLATrace struct {
	Expression string `json:"expression"`
	Satisfied  bool   `json:"satisfied"`
	Note       string `json:"note,omitempty"`
}
