package core

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		raw     any
		want    Constraint
		wantErr bool
	}{
		{
			name: "bare value is equality",
			key:  "region",
			raw:  "eu-west",
			want: Constraint{Op: OpEq, Value: StringAttr("eu-west")},
		},
		{
			name: "max prefix infers lte",
			key:  "max_latency_ms",
			raw:  20,
			want: Constraint{Op: OpLte, Value: IntAttr(20)},
		},
		{
			name: "min prefix infers gte",
			key:  "min_uptime",
			raw:  0.999,
			want: Constraint{Op: OpGte, Value: FloatAttr(0.999)},
		},
		{
			name: "explicit operator map",
			key:  "features",
			raw:  map[string]any{"$contains": "tls"},
			want: Constraint{Op: OpContains, Value: StringAttr("tls")},
		},
		{
			name: "explicit operator beats prefix",
			key:  "max_latency_ms",
			raw:  map[string]any{"$gt": 5},
			want: Constraint{Op: OpGt, Value: IntAttr(5)},
		},
		{
			name: "in with list",
			key:  "region",
			raw:  map[string]any{"$in": []any{"eu-west", "eu-central"}},
			want: Constraint{Op: OpIn, Value: ListAttr("eu-west", "eu-central")},
		},
		{name: "unknown operator", key: "x", raw: map[string]any{"$regex": "a.*"}, wantErr: true},
		{name: "multiple operators", key: "x", raw: map[string]any{"$gt": 1, "$lt": 5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConstraint(tt.key, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConstraint() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("constraint mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstraintSatisfied(t *testing.T) {
	tests := []struct {
		name       string
		constraint Constraint
		attr       AttrValue
		want       bool
	}{
		{"eq hit", Constraint{Op: OpEq, Value: StringAttr("eu")}, StringAttr("eu"), true},
		{"eq miss", Constraint{Op: OpEq, Value: StringAttr("eu")}, StringAttr("us"), false},
		{"ne", Constraint{Op: OpNe, Value: StringAttr("us")}, StringAttr("eu"), true},
		{"lt", Constraint{Op: OpLt, Value: IntAttr(50)}, IntAttr(20), true},
		{"lte boundary", Constraint{Op: OpLte, Value: IntAttr(20)}, IntAttr(20), true},
		{"gt numeric cross-type", Constraint{Op: OpGt, Value: FloatAttr(0.9)}, FloatAttr(0.99), true},
		{"gte miss", Constraint{Op: OpGte, Value: FloatAttr(0.999)}, FloatAttr(0.99), false},
		{"in hit", Constraint{Op: OpIn, Value: ListAttr("eu", "us")}, StringAttr("eu"), true},
		{"in miss", Constraint{Op: OpIn, Value: ListAttr("eu", "us")}, StringAttr("ap"), false},
		{"contains list", Constraint{Op: OpContains, Value: StringAttr("tls")}, ListAttr("tls", "x"), true},
		{"ordering on bool never satisfied", Constraint{Op: OpLt, Value: BoolAttr(true)}, BoolAttr(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.constraint.Satisfied(tt.attr); got != tt.want {
				t.Errorf("Satisfied() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequirementSetUnmarshalYAML(t *testing.T) {
	input := `
must:
  region: eu-west
  max_latency_ms: 20
prefer:
  features: { $contains: replication }
forbid:
  deprecated: true
hints:
  zone: { $in: [a, b] }
`
	var got RequirementSet
	if err := yaml.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	want := RequirementSet{
		Must: map[string]Constraint{
			"region":         {Op: OpEq, Value: StringAttr("eu-west")},
			"max_latency_ms": {Op: OpLte, Value: IntAttr(20)},
		},
		Prefer: map[string]Constraint{
			"features": {Op: OpContains, Value: StringAttr("replication")},
		},
		Forbid: map[string]Constraint{
			"deprecated": {Op: OpEq, Value: BoolAttr(true)},
		},
		Hints: map[string]Constraint{
			"zone": {Op: OpIn, Value: ListAttr("a", "b")},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("requirement set mismatch (-want +got):\n%s", diff)
	}
}

func TestRequirementSetJSONRoundTrip(t *testing.T) {
	original := RequirementSet{
		Must: map[string]Constraint{
			"region":         {Op: OpEq, Value: StringAttr("eu-west")},
			"max_latency_ms": {Op: OpLte, Value: IntAttr(20)},
		},
		Prefer: map[string]Constraint{
			"features": {Op: OpContains, Value: StringAttr("tls")},
		},
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded RequirementSet
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCapabilityDependencyValidate(t *testing.T) {
	valid := CapabilityDependency{Capability: "cache.redis", Classification: ClassificationInternal}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid dependency rejected: %v", err)
	}

	badPattern := CapabilityDependency{Capability: "cache.[", Classification: ClassificationInternal}
	if err := badPattern.Validate(); err == nil {
		t.Error("malformed capability accepted")
	}

	badClass := CapabilityDependency{Capability: "cache.redis", Classification: "secret"}
	if err := badClass.Validate(); err == nil {
		t.Error("unknown classification accepted")
	}
}
