// Package attest implements capability-token verification: canonical
// encoding, Ed25519 signature checks, time-window validation and capability
// matching. Everything verifies against trust roots supplied by a key
// provider; nothing here ever mutates a token.
package attest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// CanonicalVersion tags the canonical encoding so the format can evolve
// without breaking verification of older tokens.
const CanonicalVersion = 1

// canonicalToken is the exact byte layout signatures cover. Field order is
// the wire contract: v, sub, iss, cap, iat, exp, key. Timestamps are UTC
// unix milliseconds, HTML escaping is off, and there is no trailing
// newline. Any change here is a breaking change to every issued token.
type canonicalToken struct {
	V        int    `json:"v"`
	Subject  string `json:"sub"`
	Issuer   string `json:"iss"`
	Cap      string `json:"cap"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
	Key      string `json:"key"`
}

// CanonicalBytes returns the canonical encoding of the signable token
// fields. The signature field itself is never part of the encoding.
func CanonicalBytes(token *core.CapabilityToken) ([]byte, error) {
	canonical := canonicalToken{
		V:        CanonicalVersion,
		Subject:  token.Subject,
		Issuer:   token.IssuerDomain,
		Cap:      token.Capability,
		IssuedAt: token.IssuedAt.UnixMilli(),
		Expiry:   token.Expiry.UnixMilli(),
		Key:      token.PublicKey,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canonical); err != nil {
		return nil, fmt.Errorf("canonical encoding failed: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeCanonical parses canonical bytes back into the signable token
// fields. Round-tripping through DecodeCanonical and CanonicalBytes is
// byte-identical; that property is what makes cross-implementation
// signatures possible.
func DecodeCanonical(raw []byte) (*core.CapabilityToken, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var canonical canonicalToken
	if err := dec.Decode(&canonical); err != nil {
		return nil, fmt.Errorf("canonical decoding failed: %w", err)
	}
	if canonical.V != CanonicalVersion {
		return nil, fmt.Errorf("unsupported canonical version %d", canonical.V)
	}

	return &core.CapabilityToken{
		Subject:      canonical.Subject,
		IssuerDomain: canonical.Issuer,
		Capability:   canonical.Cap,
		IssuedAt:     time.UnixMilli(canonical.IssuedAt).UTC(),
		Expiry:       time.UnixMilli(canonical.Expiry).UTC(),
		PublicKey:    canonical.Key,
	}, nil
}
