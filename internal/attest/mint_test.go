package attest

import (
	"crypto/ed25519"
	"testing"
	"time"
)

func TestMintProducesVerifiableToken(t *testing.T) {
	f := newFixture(t)

	token, err := Mint(MintRequest{
		Subject:      "redis-eu-1",
		IssuerDomain: "org.alpha",
		Capability:   "cache.*",
		IssuedAt:     testNow.Add(-time.Minute),
		Expiry:       testNow.Add(time.Hour),
	}, f.alphaKey)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if result := f.verifier.Verify(token, "cache.redis"); !result.Verified {
		t.Errorf("minted token failed verification: %v", result.Notes)
	}
}

func TestMintValidation(t *testing.T) {
	key := ed25519.NewKeyFromSeed(bytesOf(3))
	base := MintRequest{
		Subject:      "node-1",
		IssuerDomain: "org.alpha",
		Capability:   "cache.*",
		IssuedAt:     testNow,
		Expiry:       testNow.Add(time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(req *MintRequest)
		key    ed25519.PrivateKey
	}{
		{name: "empty subject", mutate: func(r *MintRequest) { r.Subject = "" }, key: key},
		{name: "empty issuer", mutate: func(r *MintRequest) { r.IssuerDomain = "" }, key: key},
		{name: "bad capability pattern", mutate: func(r *MintRequest) { r.Capability = "cache.[" }, key: key},
		{name: "expiry before issued_at", mutate: func(r *MintRequest) { r.Expiry = r.IssuedAt.Add(-time.Second) }, key: key},
		{name: "expiry equal to issued_at", mutate: func(r *MintRequest) { r.Expiry = r.IssuedAt }, key: key},
		{name: "short key", mutate: func(r *MintRequest) {}, key: ed25519.PrivateKey([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			if _, err := Mint(req, tt.key); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
