package registry

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/OmniNode-ai/omniroute/internal/config"
)

type mapKeys struct {
	nodes map[string]ed25519.PublicKey
}

func (m mapKeys) GetDomainTrustRoot(string) ed25519.PublicKey { return nil }

func (m mapKeys) GetNodeIdentityKey(nodeID string) ed25519.PublicKey {
	return m.nodes[nodeID]
}

func testKey(b byte) ed25519.PublicKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
}

func TestStaticSourceListing(t *testing.T) {
	src, err := NewStatic(config.RegistryConfig{
		Type: "static",
		Config: map[string]any{
			"providers": []any{
				map[string]any{
					"domain":       "org.omninode",
					"id":           "redis-b",
					"capabilities": []any{"cache.redis"},
					"attributes":   map[string]any{"latency_ms": 12},
				},
				map[string]any{
					"domain":       "org.omninode",
					"id":           "redis-a",
					"capabilities": []any{"cache.*"},
				},
				map[string]any{
					"domain":       "org.omninode",
					"id":           "redis-down",
					"capabilities": []any{"cache.redis"},
					"health":       "unhealthy",
				},
				map[string]any{
					"domain":       "org.other",
					"id":           "pg-1",
					"capabilities": []any{"database.postgres"},
				},
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("NewStatic() error = %v", err)
	}

	got, err := src.ListCandidates(context.Background(), "org.omninode", "cache.redis")
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}

	var ids []string
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	// sorted by id, unhealthy withheld, other domains invisible
	want := []string{"redis-a", "redis-b"}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Errorf("ListCandidates() ids = %v, want %v", ids, want)
	}

	if got[1].Attributes["latency_ms"].Int != 12 {
		t.Errorf("latency_ms = %+v, want typed int 12", got[1].Attributes["latency_ms"])
	}
}

func TestStaticSourceRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name     string
		provider map[string]any
	}{
		{
			name: "missing domain",
			provider: map[string]any{
				"id":           "x",
				"capabilities": []any{"cache.redis"},
			},
		},
		{
			name: "missing id",
			provider: map[string]any{
				"domain":       "org.omninode",
				"capabilities": []any{"cache.redis"},
			},
		},
		{
			name: "malformed capability pattern",
			provider: map[string]any{
				"domain":       "org.omninode",
				"id":           "x",
				"capabilities": []any{"cache.[redis"},
			},
		},
		{
			name: "unknown health",
			provider: map[string]any{
				"domain":       "org.omninode",
				"id":           "x",
				"capabilities": []any{"cache.redis"},
				"health":       "sleepy",
			},
		},
		{
			name: "malformed token timestamp",
			provider: map[string]any{
				"domain":       "org.omninode",
				"id":           "x",
				"capabilities": []any{"cache.redis"},
				"token": map[string]any{
					"subject":       "x",
					"issuer_domain": "org.omninode",
					"capability":    "cache.*",
					"issued_at":     "yesterday",
					"expiry":        "2026-08-21T12:00:00Z",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStatic(config.RegistryConfig{
				Type:   "static",
				Config: map[string]any{"providers": []any{tt.provider}},
			}, nil)
			if err == nil {
				t.Error("NewStatic() accepted a bad entry")
			}
		})
	}
}

func TestStaticSourceDuplicateProviderID(t *testing.T) {
	_, err := NewStatic(config.RegistryConfig{
		Type: "static",
		Config: map[string]any{
			"providers": []any{
				map[string]any{"domain": "org.a", "id": "dup", "capabilities": []any{"cache.redis"}},
				map[string]any{"domain": "org.b", "id": "dup", "capabilities": []any{"cache.redis"}},
			},
		},
	}, nil)
	if err == nil {
		t.Error("NewStatic() accepted a duplicate provider id")
	}
}

func TestStaticSourceIdentityKeyCrosscheck(t *testing.T) {
	published := testKey(1)
	keys := mapKeys{nodes: map[string]ed25519.PublicKey{
		"redis-1": testKey(2), // conflicts with published
		"redis-2": published,
	}}

	entry := func(id string) map[string]any {
		return map[string]any{
			"domain":       "org.omninode",
			"id":           id,
			"capabilities": []any{"cache.redis"},
			"identity_key": base64.StdEncoding.EncodeToString(published),
		}
	}

	if _, err := NewStatic(config.RegistryConfig{
		Type:   "static",
		Config: map[string]any{"providers": []any{entry("redis-1")}},
	}, keys); err == nil {
		t.Error("NewStatic() accepted a conflicting identity key")
	}

	if _, err := NewStatic(config.RegistryConfig{
		Type:   "static",
		Config: map[string]any{"providers": []any{entry("redis-2")}},
	}, keys); err != nil {
		t.Errorf("NewStatic() rejected a matching identity key: %v", err)
	}

	// unknown to the key provider: nothing to cross-check
	if _, err := NewStatic(config.RegistryConfig{
		Type:   "static",
		Config: map[string]any{"providers": []any{entry("redis-3")}},
	}, keys); err != nil {
		t.Errorf("NewStatic() rejected an uncheckable identity key: %v", err)
	}
}

func TestFileSourceLoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")

	first := `providers:
  - domain: org.omninode
    id: redis-1
    capabilities: ["cache.redis"]
    token:
      subject: redis-1
      issuer_domain: org.omninode
      capability: "cache.*"
      issued_at: "2026-08-21T10:00:00Z"
      expiry: "2026-08-21T18:00:00Z"
      public_key: AAAA
      signature: BBBB
`
	if err := os.WriteFile(path, []byte(first), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewFile(config.RegistryConfig{
		Type:   "file",
		Config: map[string]any{"path": path},
	}, nil)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	got, err := src.ListCandidates(context.Background(), "org.omninode", "cache.redis")
	if err != nil {
		t.Fatalf("ListCandidates() error = %v", err)
	}
	if len(got) != 1 || got[0].Token == nil || got[0].Token.Capability != "cache.*" {
		t.Fatalf("ListCandidates() = %+v", got)
	}
	if got[0].Token.IssuedAt.IsZero() || got[0].Token.Expiry.IsZero() {
		t.Errorf("token timestamps not parsed: %+v", got[0].Token)
	}

	// a broken rewrite must keep the old snapshot
	if err := os.WriteFile(path, []byte("providers: [{id: broken}]"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := src.Reload(); err == nil {
		t.Error("Reload() accepted a broken registry file")
	}
	got, err = src.ListCandidates(context.Background(), "org.omninode", "cache.redis")
	if err != nil || len(got) != 1 {
		t.Errorf("previous snapshot lost after failed reload: %v %v", got, err)
	}

	// a valid rewrite swaps
	second := `providers:
  - domain: org.omninode
    id: redis-2
    capabilities: ["cache.redis"]
`
	if err := os.WriteFile(path, []byte(second), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := src.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	got, _ = src.ListCandidates(context.Background(), "org.omninode", "cache.redis")
	if len(got) != 1 || got[0].ID != "redis-2" {
		t.Errorf("snapshot not swapped: %+v", got)
	}
}

func TestBuildSourceUnknownType(t *testing.T) {
	if _, err := BuildSource(config.RegistryConfig{Type: "consul"}, nil); err == nil {
		t.Error("BuildSource() accepted an unknown type")
	}
}
