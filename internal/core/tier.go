package core

import "fmt"

// Tier is one of the four resolution tiers, ordered by ascending trust
// distance. Escalation always walks TierOrder front to back; candidate-side
// signals never reorder it.
type Tier string

const (
	TierLocalExact      Tier = "LOCAL_EXACT"
	TierLocalCompatible Tier = "LOCAL_COMPATIBLE"
	TierOrg             Tier = "ORG"
	TierFederated       Tier = "FEDERATED"
)

// TierOrder is the fixed escalation order.
var TierOrder = []Tier{
	TierLocalExact,
	TierLocalCompatible,
	TierOrg,
	TierFederated,
}

// Distance returns the trust distance of the tier (its index in TierOrder),
// or -1 for an unknown tier.
func (t Tier) Distance() int {
	for i, o := range TierOrder {
		if o == t {
			return i
		}
	}
	return -1
}

func (t Tier) Valid() bool {
	return t.Distance() >= 0
}

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}
