package attest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

func canonicalFixture() *core.CapabilityToken {
	return &core.CapabilityToken{
		Subject:      "redis-eu-1",
		IssuerDomain: "org.alpha",
		Capability:   "cache.*",
		IssuedAt:     time.Date(2026, 8, 21, 11, 0, 0, 0, time.UTC),
		Expiry:       time.Date(2026, 8, 21, 13, 0, 0, 0, time.UTC),
		PublicKey:    "AAAAC3NzaC1lZDI1NTE5AAAAIQ==",
	}
}

func TestCanonicalBytesDeterministic(t *testing.T) {
	token := canonicalFixture()
	first, err := CanonicalBytes(token)
	if err != nil {
		t.Fatalf("CanonicalBytes() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := CanonicalBytes(token)
		if err != nil {
			t.Fatalf("CanonicalBytes() error = %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding unstable:\n%s\n%s", first, again)
		}
	}
}

func TestCanonicalRoundTripIdempotent(t *testing.T) {
	token := canonicalFixture()

	encoded, err := CanonicalBytes(token)
	if err != nil {
		t.Fatalf("CanonicalBytes() error = %v", err)
	}
	decoded, err := DecodeCanonical(encoded)
	if err != nil {
		t.Fatalf("DecodeCanonical() error = %v", err)
	}
	reencoded, err := CanonicalBytes(decoded)
	if err != nil {
		t.Fatalf("CanonicalBytes(decoded) error = %v", err)
	}

	if !bytes.Equal(encoded, reencoded) {
		t.Errorf("canonicalization not idempotent:\n%s\n%s", encoded, reencoded)
	}
}

func TestCanonicalTruncatesToMillis(t *testing.T) {
	token := canonicalFixture()
	token.IssuedAt = token.IssuedAt.Add(412 * time.Microsecond)

	encoded, err := CanonicalBytes(token)
	if err != nil {
		t.Fatalf("CanonicalBytes() error = %v", err)
	}
	decoded, err := DecodeCanonical(encoded)
	if err != nil {
		t.Fatalf("DecodeCanonical() error = %v", err)
	}
	reencoded, err := CanonicalBytes(decoded)
	if err != nil {
		t.Fatalf("CanonicalBytes(decoded) error = %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Error("sub-millisecond precision leaked into the canonical form")
	}
}

func TestCanonicalNoHTMLEscaping(t *testing.T) {
	token := canonicalFixture()
	token.Subject = "node<1>&co"

	encoded, err := CanonicalBytes(token)
	if err != nil {
		t.Fatalf("CanonicalBytes() error = %v", err)
	}
	if !strings.Contains(string(encoded), "node<1>&co") {
		t.Errorf("HTML escaping applied: %s", encoded)
	}
	if strings.Contains(string(encoded), `\u003c`) {
		t.Errorf("HTML escaping applied: %s", encoded)
	}
}

func TestCanonicalFieldOrder(t *testing.T) {
	encoded, err := CanonicalBytes(canonicalFixture())
	if err != nil {
		t.Fatalf("CanonicalBytes() error = %v", err)
	}

	text := string(encoded)
	order := []string{`"v"`, `"sub"`, `"iss"`, `"cap"`, `"iat"`, `"exp"`, `"key"`}
	last := -1
	for _, field := range order {
		idx := strings.Index(text, field)
		if idx < 0 {
			t.Fatalf("field %s missing in %s", field, text)
		}
		if idx < last {
			t.Fatalf("field %s out of order in %s", field, text)
		}
		last = idx
	}
	if strings.HasSuffix(text, "\n") {
		t.Error("canonical bytes must not end with a newline")
	}
}

func TestDecodeCanonicalRejectsBadInput(t *testing.T) {
	if _, err := DecodeCanonical([]byte(`{"v":99,"sub":"x","iss":"y","cap":"z","iat":0,"exp":0,"key":""}`)); err == nil {
		t.Error("unsupported version accepted")
	}
	if _, err := DecodeCanonical([]byte(`{"v":1,"sub":"x","extra":true}`)); err == nil {
		t.Error("unknown field accepted")
	}
	if _, err := DecodeCanonical([]byte(`not json`)); err == nil {
		t.Error("garbage accepted")
	}
}
