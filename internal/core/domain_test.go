package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"
)

func testKeyB64(t *testing.T, seed byte) string {
	t.Helper()
	seedBytes := make([]byte, ed25519.SeedSize)
	for i := range seedBytes {
		seedBytes[i] = seed
	}
	priv := ed25519.NewKeyFromSeed(seedBytes)
	return base64.StdEncoding.EncodeToString(priv.Public().(ed25519.PublicKey))
}

func TestTrustDomainValidate(t *testing.T) {
	key := testKeyB64(t, 1)

	tests := []struct {
		name    string
		domain  TrustDomain
		wantErr string
	}{
		{
			name:   "valid org domain",
			domain: TrustDomain{ID: "org.omninode", Tier: TierOrg, PublicKey: key, Capabilities: []string{"cache.*"}},
		},
		{
			name:   "local exact without key",
			domain: TrustDomain{ID: "local.default", Tier: TierLocalExact, Capabilities: []string{"*"}},
		},
		{
			name:    "missing id",
			domain:  TrustDomain{Tier: TierOrg, PublicKey: key, Capabilities: []string{"*"}},
			wantErr: "id must not be empty",
		},
		{
			name:    "unknown tier",
			domain:  TrustDomain{ID: "x", Tier: "GALACTIC", PublicKey: key, Capabilities: []string{"*"}},
			wantErr: "unknown tier",
		},
		{
			name:    "non-local without key",
			domain:  TrustDomain{ID: "fed.partner", Tier: TierFederated, Capabilities: []string{"*"}},
			wantErr: "requires a trust root",
		},
		{
			name:    "malformed key",
			domain:  TrustDomain{ID: "org.x", Tier: TierOrg, PublicKey: "!!!not-base64!!!", Capabilities: []string{"*"}},
			wantErr: "invalid trust root encoding",
		},
		{
			name:    "wrong key length",
			domain:  TrustDomain{ID: "org.x", Tier: TierOrg, PublicKey: base64.StdEncoding.EncodeToString([]byte("short")), Capabilities: []string{"*"}},
			wantErr: "must be 32 bytes",
		},
		{
			name:    "no capabilities",
			domain:  TrustDomain{ID: "org.x", Tier: TierOrg, PublicKey: key},
			wantErr: "capability pattern required",
		},
		{
			name:    "bad capability pattern",
			domain:  TrustDomain{ID: "org.x", Tier: TierOrg, PublicKey: key, Capabilities: []string{"cache.["}},
			wantErr: "invalid capability pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.domain.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTrustDomainAuthorizes(t *testing.T) {
	domain := TrustDomain{
		ID:           "org.omninode",
		Tier:         TierOrg,
		Capabilities: []string{"database.*", "cache.redis"},
	}
	if !domain.Authorizes("database.postgres") {
		t.Error("pattern-covered capability denied")
	}
	if !domain.Authorizes("cache.redis") {
		t.Error("exact capability denied")
	}
	if domain.Authorizes("queue.kafka") {
		t.Error("uncovered capability authorized")
	}
}

func TestNewDomainSet(t *testing.T) {
	key := testKeyB64(t, 2)
	domains := []TrustDomain{
		{ID: "local.default", Tier: TierLocalExact, Capabilities: []string{"*"}},
		{ID: "local.lab", Tier: TierLocalCompatible, PublicKey: key, Capabilities: []string{"*"}},
		{ID: "org.omninode", Tier: TierOrg, PublicKey: key, Capabilities: []string{"cache.*"}},
	}

	set, err := NewDomainSet(domains)
	if err != nil {
		t.Fatalf("NewDomainSet() error = %v", err)
	}
	if set.Len() != 3 {
		t.Errorf("Len() = %d, want 3", set.Len())
	}
	if d := set.ByID("org.omninode"); d == nil || d.Tier != TierOrg {
		t.Errorf("ByID(org.omninode) = %+v", d)
	}
	if d := set.ByID("missing"); d != nil {
		t.Errorf("ByID(missing) = %+v, want nil", d)
	}
	if got := set.AtTier(TierOrg); len(got) != 1 || got[0].ID != "org.omninode" {
		t.Errorf("AtTier(ORG) = %+v", got)
	}
	if got := set.AtTier(TierFederated); len(got) != 0 {
		t.Errorf("AtTier(FEDERATED) = %+v, want empty", got)
	}

	// duplicate ids are a configuration error
	if _, err := NewDomainSet(append(domains, domains[0])); err == nil {
		t.Error("duplicate domain id accepted")
	}
}
