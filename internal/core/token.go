package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"
)

// CapabilityToken is a signed attestation that Subject may provide
// Capability, issued by IssuerDomain. Tokens are opaque transmitted data:
// the verifier reads them and never mutates them.
type CapabilityToken struct {
	Subject      string    `json:"subject" yaml:"subject"`
	IssuerDomain string    `json:"issuer_domain" yaml:"issuer_domain"`
	Capability   string    `json:"capability" yaml:"capability"`
	IssuedAt     time.Time `json:"issued_at" yaml:"issued_at"`
	Expiry       time.Time `json:"expiry" yaml:"expiry"`

	// PublicKey is the issuer's Ed25519 key, base64 (32 raw bytes).
	PublicKey string `json:"public_key" yaml:"public_key"`

	// Signature is base64 Ed25519 (64 raw bytes) over the canonical
	// encoding of all preceding fields.
	Signature string `json:"signature" yaml:"signature"`
}

// DecodePublicKey returns the embedded issuer key bytes.
func (t *CapabilityToken) DecodePublicKey() (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(t.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid key length %d", len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// DecodeSignature returns the raw signature bytes.
func (t *CapabilityToken) DecodeSignature() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(t.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(raw) != ed25519.SignatureSize {
		return nil, fmt.Errorf("invalid signature length %d", len(raw))
	}
	return raw, nil
}

// ProofType names a satisfied verification proof on a route hop.
type ProofType string

const (
	// ProofCapabilityAttested marks a hop whose provider presented a
	// verified capability token.
	ProofCapabilityAttested ProofType = "CAPABILITY_ATTESTED"
)

// VerificationResult is the verifier's verdict. Verified is never true
// unless every gate passed; on failure Code carries the failure class and
// Notes the human-readable reason trail.
type VerificationResult struct {
	Verified   bool        `json:"verified"`
	ProofType  ProofType   `json:"proof_type,omitempty"`
	Code       FailureCode `json:"code,omitempty"`
	Notes      []string    `json:"notes,omitempty"`
	VerifiedAt time.Time   `json:"verified_at"`
}
