package core

import (
	"strings"
	"testing"
	"time"
)

func validBundle() PolicyBundle {
	return PolicyBundle{
		Version: "2026-08",
		TrustPolicy: TrustPolicy{
			DefaultRouteTTL: 5 * time.Minute,
			MaxRouteTTL:     time.Hour,
		},
		Gates: []ClassificationGate{
			{
				Classification: ClassificationPublic,
				AllowedTiers:   []Tier{TierLocalExact, TierLocalCompatible, TierOrg, TierFederated},
			},
			{
				Classification:    ClassificationInternal,
				AllowedTiers:      []Tier{TierLocalExact, TierLocalCompatible, TierOrg},
				RequireEncryption: true,
			},
			{
				Classification:    ClassificationConfidential,
				AllowedTiers:      []Tier{TierLocalExact},
				RequireEncryption: true,
				RequireRedaction:  true,
				RedactionPolicy:   "pii-strip",
			},
		},
		Redactions: []RedactionPolicy{
			{Name: "pii-strip", Fields: []string{"owner_email"}},
		},
	}
}

func TestPolicyBundleValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *PolicyBundle)
		wantErr string
	}{
		{name: "valid", mutate: func(b *PolicyBundle) {}},
		{
			name: "duplicate gate",
			mutate: func(b *PolicyBundle) {
				b.Gates = append(b.Gates, ClassificationGate{
					Classification: ClassificationInternal,
					AllowedTiers:   []Tier{TierLocalExact},
				})
			},
			wantErr: "duplicate classification gate",
		},
		{
			name: "unknown tier",
			mutate: func(b *PolicyBundle) {
				b.Gates[0].AllowedTiers = []Tier{"GALACTIC"}
			},
			wantErr: "unknown tier",
		},
		{
			name: "unknown classification",
			mutate: func(b *PolicyBundle) {
				b.Gates[0].Classification = "secret"
			},
			wantErr: "unknown classification",
		},
		{
			name: "redaction without policy",
			mutate: func(b *PolicyBundle) {
				b.Gates[1].RequireRedaction = true
			},
			wantErr: "require_redaction",
		},
		{
			name: "dangling redaction reference",
			mutate: func(b *PolicyBundle) {
				b.Gates[2].RedactionPolicy = "does-not-exist"
			},
			wantErr: "unknown redaction policy",
		},
		{
			name: "max ttl below default",
			mutate: func(b *PolicyBundle) {
				b.TrustPolicy.MaxRouteTTL = time.Minute
			},
			wantErr: "max_route_ttl",
		},
		{
			name: "default gate with classification",
			mutate: func(b *PolicyBundle) {
				b.DefaultGate = &ClassificationGate{
					Classification: ClassificationPublic,
					AllowedTiers:   []Tier{TierLocalExact},
				}
			},
			wantErr: "default gate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := validBundle()
			tt.mutate(&bundle)
			err := bundle.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestPolicyBundleGateLookup(t *testing.T) {
	bundle := validBundle()

	if g := bundle.Gate(ClassificationInternal); g == nil || g.Classification != ClassificationInternal {
		t.Fatalf("Gate(internal) = %+v", g)
	}

	// no gate and no default gate
	if g := bundle.Gate(ClassificationRestricted); g != nil {
		t.Errorf("ungated classification returned %+v, want nil", g)
	}

	// explicit default gate takes over
	bundle.DefaultGate = &ClassificationGate{AllowedTiers: []Tier{TierLocalExact}}
	if g := bundle.Gate(ClassificationRestricted); g != bundle.DefaultGate {
		t.Error("default gate not returned for ungated classification")
	}
}

func TestClassificationGateAllows(t *testing.T) {
	gate := ClassificationGate{
		Classification: ClassificationInternal,
		AllowedTiers:   []Tier{TierLocalExact, TierOrg},
	}
	if !gate.Allows(TierOrg) {
		t.Error("allowed tier denied")
	}
	if gate.Allows(TierFederated) {
		t.Error("excluded tier allowed")
	}

	empty := ClassificationGate{Classification: ClassificationRestricted}
	for _, tier := range TierOrder {
		if empty.Allows(tier) {
			t.Errorf("empty allowed-tier list must block %s", tier)
		}
	}
}
