package engine

import (
	"sort"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// PoolEntry is one candidate with its provenance. The resolver builds the
// pool from the candidate sources of every domain at the current tier.
type PoolEntry struct {
	DomainID   string
	Descriptor core.ProviderDescriptor
}

// Ranked is a pool entry with its match verdict.
type Ranked struct {
	PoolEntry
	Result MatchResult
}

// Selection is the outcome of ranking one pool, with every evaluated
// candidate kept for tracing.
type Selection struct {
	// Best is the winning candidate, nil when nothing matched.
	Best *Ranked

	// Ranked lists every capability-eligible candidate in final order:
	// matches before non-matches, then score descending, hints
	// descending, provider id ascending.
	Ranked []Ranked
}

// Select filters the pool to candidates declaring the requested capability,
// scores each against the requirement set and returns the deterministic
// ranking. Ties break on provider id (lexicographic ascending), then domain
// id, never randomly, so resolution is reproducible across runs.
func Select(dep *core.CapabilityDependency, pool []PoolEntry) Selection {
	ranked := make([]Ranked, 0, len(pool))
	for _, entry := range pool {
		if !entry.Descriptor.DeclaresCapability(dep.Capability) {
			continue
		}
		ranked = append(ranked, Ranked{
			PoolEntry: entry,
			Result:    Match(&entry.Descriptor, dep.Requirements),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Result.Match != b.Result.Match {
			return a.Result.Match
		}
		if a.Result.Score != b.Result.Score {
			return a.Result.Score > b.Result.Score
		}
		if a.Result.Hints != b.Result.Hints {
			return a.Result.Hints > b.Result.Hints
		}
		if a.Descriptor.ID != b.Descriptor.ID {
			return a.Descriptor.ID < b.Descriptor.ID
		}
		return a.DomainID < b.DomainID
	})

	selection := Selection{Ranked: ranked}
	if len(ranked) > 0 && ranked[0].Result.Match {
		selection.Best = &ranked[0]
	}
	return selection
}
