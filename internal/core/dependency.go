package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Classification is the sensitivity level of the data a dependency will
// carry. It selects the classification gate during resolution.
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential, ClassificationRestricted:
		return true
	}
	return false
}

func ParseClassification(s string) (Classification, error) {
	c := Classification(strings.ToLower(s))
	if !c.Valid() {
		return "", fmt.Errorf("unknown classification %q", s)
	}
	return c, nil
}

// Operator is a comparison operator on a requirement constraint.
type Operator string

const (
	OpEq       Operator = "$eq"
	OpNe       Operator = "$ne"
	OpLt       Operator = "$lt"
	OpLte      Operator = "$lte"
	OpGt       Operator = "$gt"
	OpGte      Operator = "$gte"
	OpIn       Operator = "$in"
	OpContains Operator = "$contains"
)

func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpIn, OpContains:
		return Operator(s), nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// DefaultOperatorForKey infers the comparison for a constraint written as a
// bare value: max_* keys cap the attribute ($lte), min_* keys floor it
// ($gte), everything else is equality. The key itself is used verbatim as
// the attribute name.
func DefaultOperatorForKey(key string) Operator {
	switch {
	case strings.HasPrefix(key, "max_"):
		return OpLte
	case strings.HasPrefix(key, "min_"):
		return OpGte
	default:
		return OpEq
	}
}

// Constraint is one parsed requirement: an operator and the value to compare
// the descriptor attribute against.
type Constraint struct {
	Op    Operator  `json:"op" yaml:"op"`
	Value AttrValue `json:"value" yaml:"value"`
}

// Satisfied reports whether the descriptor attribute meets the constraint.
// Unordered comparisons (e.g. $lt on a bool) are never satisfied.
func (c Constraint) Satisfied(attr AttrValue) bool {
	switch c.Op {
	case OpEq:
		return attr.Equal(c.Value)
	case OpNe:
		return !attr.Equal(c.Value)
	case OpLt:
		cmp, ok := attr.Compare(c.Value)
		return ok && cmp < 0
	case OpLte:
		cmp, ok := attr.Compare(c.Value)
		return ok && cmp <= 0
	case OpGt:
		cmp, ok := attr.Compare(c.Value)
		return ok && cmp > 0
	case OpGte:
		cmp, ok := attr.Compare(c.Value)
		return ok && cmp >= 0
	case OpIn:
		return c.Value.Contains(attr)
	case OpContains:
		return attr.Contains(c.Value)
	default:
		return false
	}
}

// ParseConstraint builds a constraint from a decoded requirement entry. The
// raw value is either a bare scalar/list (operator inferred from the key) or
// a single-entry map selecting the operator explicitly, e.g.
// {"$contains": "tls"}.
func ParseConstraint(key string, raw any) (Constraint, error) {
	if m, ok := rawMap(raw); ok {
		if len(m) != 1 {
			return Constraint{}, fmt.Errorf("constraint %q: expected exactly one operator, got %d", key, len(m))
		}
		for opName, opValue := range m {
			op, err := ParseOperator(opName)
			if err != nil {
				return Constraint{}, fmt.Errorf("constraint %q: %w", key, err)
			}
			value, err := ParseAttrValue(opValue)
			if err != nil {
				return Constraint{}, fmt.Errorf("constraint %q: %w", key, err)
			}
			return Constraint{Op: op, Value: value}, nil
		}
	}
	value, err := ParseAttrValue(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("constraint %q: %w", key, err)
	}
	return Constraint{Op: DefaultOperatorForKey(key), Value: value}, nil
}

func rawMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// RequirementSet holds the four constraint tiers of a dependency. Must
// constraints gate the match, prefer constraints shape the score, forbid
// constraints disqualify, hints only break ties.
type RequirementSet struct {
	Must   map[string]Constraint
	Prefer map[string]Constraint
	Forbid map[string]Constraint
	Hints  map[string]Constraint
}

func (r RequirementSet) Empty() bool {
	return len(r.Must) == 0 && len(r.Prefer) == 0 && len(r.Forbid) == 0 && len(r.Hints) == 0
}

// rawRequirementSet is the wire shape: each tier maps attribute keys to bare
// values or operator maps.
type rawRequirementSet struct {
	Must   map[string]any `json:"must,omitempty" yaml:"must,omitempty"`
	Prefer map[string]any `json:"prefer,omitempty" yaml:"prefer,omitempty"`
	Forbid map[string]any `json:"forbid,omitempty" yaml:"forbid,omitempty"`
	Hints  map[string]any `json:"hints,omitempty" yaml:"hints,omitempty"`
}

func parseConstraintMap(raw map[string]any) (map[string]Constraint, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]Constraint, len(raw))
	for key, value := range raw {
		c, err := ParseConstraint(key, value)
		if err != nil {
			return nil, err
		}
		out[key] = c
	}
	return out, nil
}

func (r *RequirementSet) fromRaw(raw rawRequirementSet) error {
	var err error
	if r.Must, err = parseConstraintMap(raw.Must); err != nil {
		return fmt.Errorf("must: %w", err)
	}
	if r.Prefer, err = parseConstraintMap(raw.Prefer); err != nil {
		return fmt.Errorf("prefer: %w", err)
	}
	if r.Forbid, err = parseConstraintMap(raw.Forbid); err != nil {
		return fmt.Errorf("forbid: %w", err)
	}
	if r.Hints, err = parseConstraintMap(raw.Hints); err != nil {
		return fmt.Errorf("hints: %w", err)
	}
	return nil
}

func (r RequirementSet) toRaw() rawRequirementSet {
	conv := func(m map[string]Constraint) map[string]any {
		if len(m) == 0 {
			return nil
		}
		out := make(map[string]any, len(m))
		for key, c := range m {
			if c.Op == DefaultOperatorForKey(key) {
				out[key] = c.Value.Native()
			} else {
				out[key] = map[string]any{string(c.Op): c.Value.Native()}
			}
		}
		return out
	}
	return rawRequirementSet{
		Must:   conv(r.Must),
		Prefer: conv(r.Prefer),
		Forbid: conv(r.Forbid),
		Hints:  conv(r.Hints),
	}
}

func (r *RequirementSet) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw rawRequirementSet
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	return r.fromRaw(raw)
}

func (r RequirementSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toRaw())
}

func (r *RequirementSet) UnmarshalYAML(b []byte) error {
	var raw rawRequirementSet
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}
	return r.fromRaw(raw)
}

func (r RequirementSet) MarshalYAML() (any, error) {
	return r.toRaw(), nil
}

// SortedKeys returns the keys of a constraint map in stable order, for
// deterministic evaluation notes.
func SortedKeys(m map[string]Constraint) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CapabilityDependency is one resolution request. Instances are immutable:
// callers build a fresh dependency per resolve call.
type CapabilityDependency struct {
	Capability     string         `json:"capability" yaml:"capability"`
	Requirements   RequirementSet `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Classification Classification `json:"classification" yaml:"classification"`

	// SLA is an optional expression evaluated against the winning
	// candidate's attributes, e.g. "latency_ms < 50 && uptime >= 0.999".
	SLA string `json:"sla,omitempty" yaml:"sla,omitempty"`
}

func (d *CapabilityDependency) Validate() error {
	if err := ValidateCapabilityPattern(d.Capability); err != nil {
		return fmt.Errorf("capability: %w", err)
	}
	if !d.Classification.Valid() {
		return fmt.Errorf("unknown classification %q", d.Classification)
	}
	return nil
}
