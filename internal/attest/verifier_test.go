package attest

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

var testNow = time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

type stubKeys struct {
	roots map[string]ed25519.PublicKey
	nodes map[string]ed25519.PublicKey
}

func (s stubKeys) GetDomainTrustRoot(domainID string) ed25519.PublicKey {
	return s.roots[domainID]
}

func (s stubKeys) GetNodeIdentityKey(nodeID string) ed25519.PublicKey {
	return s.nodes[nodeID]
}

type fixture struct {
	verifier *Verifier
	alphaKey ed25519.PrivateKey
	betaKey  ed25519.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	alphaKey := ed25519.NewKeyFromSeed(bytesOf(1))
	betaKey := ed25519.NewKeyFromSeed(bytesOf(2))

	alphaPub := alphaKey.Public().(ed25519.PublicKey)
	betaPub := betaKey.Public().(ed25519.PublicKey)

	domains, err := core.NewDomainSet([]core.TrustDomain{
		{
			ID:           "org.alpha",
			Tier:         core.TierOrg,
			PublicKey:    base64.StdEncoding.EncodeToString(alphaPub),
			Capabilities: []string{"*"},
		},
		{
			ID:           "fed.beta",
			Tier:         core.TierFederated,
			PublicKey:    base64.StdEncoding.EncodeToString(betaPub),
			Capabilities: []string{"*"},
		},
		{
			ID:           "org.nokey",
			Tier:         core.TierOrg,
			PublicKey:    base64.StdEncoding.EncodeToString(alphaPub),
			Capabilities: []string{"*"},
		},
	})
	if err != nil {
		t.Fatalf("NewDomainSet() error = %v", err)
	}

	keys := stubKeys{roots: map[string]ed25519.PublicKey{
		"org.alpha": alphaPub,
		"fed.beta":  betaPub,
		// org.nokey deliberately absent: its root is unavailable
	}}

	clock := core.ClockFunc(func() time.Time { return testNow })

	return &fixture{
		verifier: NewVerifier(domains, keys, clock),
		alphaKey: alphaKey,
		betaKey:  betaKey,
	}
}

func bytesOf(b byte) []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func mintValid(t *testing.T, f *fixture) *core.CapabilityToken {
	t.Helper()
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
	return token
}

func TestVerifyValidToken(t *testing.T) {
	f := newFixture(t)
	token := mintValid(t, f)

	result := f.verifier.Verify(token, "cache.redis")
	if !result.Verified {
		t.Fatalf("Verify() = %+v, want verified", result)
	}
	if result.ProofType != core.ProofCapabilityAttested {
		t.Errorf("ProofType = %q, want %q", result.ProofType, core.ProofCapabilityAttested)
	}
	if !result.VerifiedAt.Equal(testNow) {
		t.Errorf("VerifiedAt = %v, want %v", result.VerifiedAt, testNow)
	}
}

func TestVerifyTimeBoundaries(t *testing.T) {
	f := newFixture(t)

	mint := func(issuedAt, expiry time.Time) *core.CapabilityToken {
		token, err := Mint(MintRequest{
			Subject:      "redis-eu-1",
			IssuerDomain: "org.alpha",
			Capability:   "cache.*",
			IssuedAt:     issuedAt,
			Expiry:       expiry,
		}, f.alphaKey)
		if err != nil {
			t.Fatalf("Mint() error = %v", err)
		}
		return token
	}

	tests := []struct {
		name     string
		issuedAt time.Time
		expiry   time.Time
		want     bool
		wantNote string
	}{
		{"issued exactly now is valid", testNow, testNow.Add(time.Hour), true, ""},
		{"issued 1ms in the future is invalid", testNow.Add(time.Millisecond), testNow.Add(time.Hour), false, "future"},
		{"expiry exactly now is expired", testNow.Add(-time.Hour), testNow, false, "expired"},
		{"expiry 1ms ago is expired", testNow.Add(-time.Hour), testNow.Add(-time.Millisecond), false, "expired"},
		{"expiry 1ms ahead is valid", testNow.Add(-time.Hour), testNow.Add(time.Millisecond), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.verifier.Verify(mint(tt.issuedAt, tt.expiry), "cache.redis")
			if result.Verified != tt.want {
				t.Fatalf("Verified = %v, want %v (notes: %v)", result.Verified, tt.want, result.Notes)
			}
			if !tt.want && !notesContain(result.Notes, tt.wantNote) {
				t.Errorf("notes %v do not mention %q", result.Notes, tt.wantNote)
			}
		})
	}
}

func TestVerifyKeyMismatch(t *testing.T) {
	f := newFixture(t)

	// Signed end-to-end with alpha's key but claiming beta as issuer: the
	// signature verifies against the embedded key, yet the token must be
	// rejected with KEY_MISMATCH.
	token, err := Mint(MintRequest{
		Subject:      "redis-eu-1",
		IssuerDomain: "fed.beta",
		Capability:   "cache.*",
		IssuedAt:     testNow.Add(-time.Minute),
		Expiry:       testNow.Add(time.Hour),
	}, f.alphaKey)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	result := f.verifier.Verify(token, "cache.redis")
	if result.Verified {
		t.Fatal("cross-domain key accepted")
	}
	if result.Code != core.FailureKeyMismatch {
		t.Errorf("Code = %q, want %q (notes: %v)", result.Code, core.FailureKeyMismatch, result.Notes)
	}
}

func TestVerifyFailClosedOnMissingTrustRoot(t *testing.T) {
	f := newFixture(t)

	token, err := Mint(MintRequest{
		Subject:      "redis-eu-1",
		IssuerDomain: "org.nokey",
		Capability:   "cache.*",
		IssuedAt:     testNow.Add(-time.Minute),
		Expiry:       testNow.Add(time.Hour),
	}, f.alphaKey)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	result := f.verifier.Verify(token, "cache.redis")
	if result.Verified {
		t.Fatal("token verified without an available trust root")
	}
	if !notesContain(result.Notes, "no trust root") {
		t.Errorf("notes = %v, want missing-root note", result.Notes)
	}
}

func TestVerifyHardGates(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		mutate   func(token *core.CapabilityToken)
		wantNote string
		wantCode core.FailureCode
	}{
		{
			name:     "unknown issuer domain",
			mutate:   func(tok *core.CapabilityToken) { tok.IssuerDomain = "org.unknown" },
			wantNote: "unknown issuer domain",
			wantCode: core.FailureAttestationInvalid,
		},
		{
			name:     "malformed key encoding",
			mutate:   func(tok *core.CapabilityToken) { tok.PublicKey = "!!!not-base64!!!" },
			wantNote: "invalid key encoding",
			wantCode: core.FailureAttestationInvalid,
		},
		{
			name:     "truncated key",
			mutate:   func(tok *core.CapabilityToken) { tok.PublicKey = base64.StdEncoding.EncodeToString([]byte("short")) },
			wantNote: "invalid key encoding",
			wantCode: core.FailureAttestationInvalid,
		},
		{
			name:     "malformed signature encoding",
			mutate:   func(tok *core.CapabilityToken) { tok.Signature = "%%%" },
			wantNote: "invalid signature encoding",
			wantCode: core.FailureAttestationInvalid,
		},
		{
			name:     "truncated signature",
			mutate:   func(tok *core.CapabilityToken) { tok.Signature = base64.StdEncoding.EncodeToString([]byte("short")) },
			wantNote: "invalid signature encoding",
			wantCode: core.FailureAttestationInvalid,
		},
		{
			name:     "tampered payload",
			mutate:   func(tok *core.CapabilityToken) { tok.Subject = "evil-node" },
			wantNote: "signature verification failed",
			wantCode: core.FailureAttestationInvalid,
		},
		{
			name:     "capability not attested",
			mutate:   func(tok *core.CapabilityToken) {},
			wantNote: "attests",
			wantCode: core.FailureAttestationInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := mintValid(t, f)
			tt.mutate(token)

			expected := "cache.redis"
			if tt.name == "capability not attested" {
				expected = "database.postgres"
			}

			result := f.verifier.Verify(token, expected)
			if result.Verified {
				t.Fatal("invalid token verified")
			}
			if result.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", result.Code, tt.wantCode)
			}
			if !notesContain(result.Notes, tt.wantNote) {
				t.Errorf("notes %v do not mention %q", result.Notes, tt.wantNote)
			}
		})
	}
}

func TestVerifyNilToken(t *testing.T) {
	f := newFixture(t)
	result := f.verifier.Verify(nil, "cache.redis")
	if result.Verified {
		t.Fatal("nil token verified")
	}
	if !notesContain(result.Notes, "no capability token") {
		t.Errorf("notes = %v", result.Notes)
	}
}

func TestVerifyIsDeterministic(t *testing.T) {
	f := newFixture(t)
	token := mintValid(t, f)

	first := f.verifier.Verify(token, "cache.redis")
	for i := 0; i < 10; i++ {
		again := f.verifier.Verify(token, "cache.redis")
		if again.Verified != first.Verified || again.Code != first.Code ||
			strings.Join(again.Notes, "|") != strings.Join(first.Notes, "|") {
			t.Fatalf("run %d: verdict changed: %+v vs %+v", i, again, first)
		}
	}
}

func notesContain(notes []string, substr string) bool {
	for _, note := range notes {
		if strings.Contains(note, substr) {
			return true
		}
	}
	return false
}
