// Package engine scores provider descriptors against requirement sets and
// picks the best structural candidate. It knows nothing about trust tiers,
// tokens or policy; everything here is a pure function over its inputs.
package engine

import (
	"fmt"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// MatchResult is the matcher's verdict on one descriptor.
type MatchResult struct {
	// Match is true iff every must constraint holds and no forbid
	// constraint does.
	Match bool

	// Score is the fraction of prefer constraints satisfied, 0.0 to 1.0.
	// An empty prefer set scores 1.0.
	Score float64

	// Hints counts satisfied hint constraints. Hints never affect Match
	// or Score; they only break ties between equal scores.
	Hints int

	Warnings []string
}

// Match evaluates a descriptor against a requirement set. Pure: neither
// input is mutated and no state is kept between calls.
func Match(descriptor *core.ProviderDescriptor, requirements core.RequirementSet) MatchResult {
	result := MatchResult{Match: true, Score: 1.0}

	for _, key := range core.SortedKeys(requirements.Must) {
		constraint := requirements.Must[key]
		if ok, note := evaluate(descriptor, key, constraint); !ok {
			result.Match = false
			result.Warnings = append(result.Warnings, fmt.Sprintf("must %s: %s", key, note))
		}
	}

	for _, key := range core.SortedKeys(requirements.Forbid) {
		constraint := requirements.Forbid[key]
		attr, exists := descriptor.Attr(key)
		if exists && constraint.Satisfied(attr) {
			result.Match = false
			result.Warnings = append(result.Warnings, fmt.Sprintf("forbid %s: descriptor matches forbidden constraint", key))
		}
	}

	if len(requirements.Prefer) > 0 {
		satisfied := 0
		for _, key := range core.SortedKeys(requirements.Prefer) {
			constraint := requirements.Prefer[key]
			if ok, note := evaluate(descriptor, key, constraint); ok {
				satisfied++
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("prefer %s: %s", key, note))
			}
		}
		result.Score = float64(satisfied) / float64(len(requirements.Prefer))
	}

	for _, key := range core.SortedKeys(requirements.Hints) {
		constraint := requirements.Hints[key]
		if ok, _ := evaluate(descriptor, key, constraint); ok {
			result.Hints++
		}
	}

	return result
}

func evaluate(descriptor *core.ProviderDescriptor, key string, constraint core.Constraint) (bool, string) {
	attr, exists := descriptor.Attr(key)
	if !exists {
		return false, fmt.Sprintf("attribute %q missing", key)
	}
	if !constraint.Satisfied(attr) {
		return false, fmt.Sprintf("%s %s %s not satisfied by %s",
			key, constraint.Op, constraint.Value.String(), attr.String())
	}
	return true, ""
}
