// Package policy evaluates classification gates and manages the active
// policy bundle. The evaluator is a pure function over the supplied bundle;
// loading and hot-swapping live next to it so the rest of the system only
// ever sees an immutable *core.PolicyBundle.
package policy

import "github.com/OmniNode-ai/omniroute/internal/core"

// Check answers whether a tier may serve a classification under the given
// bundle. A classification without a gate is denied unless the bundle
// declares an explicit default gate: deny is the default, not an error.
// Obligations are copied from the gate only when the tier is allowed.
func Check(classification core.Classification, tier core.Tier, bundle *core.PolicyBundle) core.GateDecision {
	if bundle == nil {
		return core.GateDecision{}
	}

	gate := bundle.Gate(classification)
	if gate == nil {
		return core.GateDecision{}
	}
	if !gate.Allows(tier) {
		return core.GateDecision{}
	}

	return core.GateDecision{
		Allowed:           true,
		RequireEncryption: gate.RequireEncryption,
		RequireRedaction:  gate.RequireRedaction,
		RedactionPolicy:   gate.RedactionPolicy,
	}
}
