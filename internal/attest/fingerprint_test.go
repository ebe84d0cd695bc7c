package attest

import (
	"crypto/ed25519"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	key := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

	token, err := Mint(MintRequest{
		Subject:      "redis-1",
		IssuerDomain: "org.omninode",
		Capability:   "cache.*",
		IssuedAt:     now,
		Expiry:       now.Add(time.Hour),
	}, key)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	fp := Fingerprint(token)
	if fp == "" {
		t.Fatal("Fingerprint() returned empty for a valid token")
	}
	if again := Fingerprint(token); again != fp {
		t.Errorf("fingerprint not stable: %q vs %q", fp, again)
	}

	// the signature is not part of the signed content
	resigned := *token
	resigned.Signature = "AAAA"
	if Fingerprint(&resigned) != fp {
		t.Error("fingerprint must depend on canonical content only")
	}

	changed := *token
	changed.Capability = "cache.redis"
	if Fingerprint(&changed) == fp {
		t.Error("fingerprint must change with the signed content")
	}

	if Fingerprint(nil) != "" {
		t.Error("nil token must fingerprint empty")
	}
}
