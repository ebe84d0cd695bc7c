package attest

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// MintRequest names the claims of a token to be signed. Timestamps are
// normalized to UTC millisecond precision, matching the canonical encoding.
type MintRequest struct {
	Subject      string
	IssuerDomain string
	Capability   string
	IssuedAt     time.Time
	Expiry       time.Time
}

// Mint signs a capability token with the issuer's private key. This is
// operator and test tooling: the service itself only ever consumes tokens,
// it does not issue them.
func Mint(req MintRequest, key ed25519.PrivateKey) (*core.CapabilityToken, error) {
	if req.Subject == "" {
		return nil, fmt.Errorf("subject must not be empty")
	}
	if req.IssuerDomain == "" {
		return nil, fmt.Errorf("issuer domain must not be empty")
	}
	if err := core.ValidateCapabilityPattern(req.Capability); err != nil {
		return nil, err
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(key))
	}
	if !req.Expiry.After(req.IssuedAt) {
		return nil, fmt.Errorf("expiry must be after issued_at")
	}

	public := key.Public().(ed25519.PublicKey)
	token := &core.CapabilityToken{
		Subject:      req.Subject,
		IssuerDomain: req.IssuerDomain,
		Capability:   req.Capability,
		IssuedAt:     req.IssuedAt.UTC().Truncate(time.Millisecond),
		Expiry:       req.Expiry.UTC().Truncate(time.Millisecond),
		PublicKey:    base64.StdEncoding.EncodeToString(public),
	}

	canonical, err := CanonicalBytes(token)
	if err != nil {
		return nil, err
	}
	token.Signature = base64.StdEncoding.EncodeToString(ed25519.Sign(key, canonical))
	return token, nil
}
