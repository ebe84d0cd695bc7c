package attest

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Fingerprint derives a stable identifier for a capability token: SHA-256
// over the canonical bytes, base64. Two tokens fingerprint equal exactly
// when their signed content is identical, so routes and audit entries can be
// correlated to attestations without storing tokens. Returns "" when the
// token is nil or cannot be canonicalized.
func Fingerprint(token *core.CapabilityToken) string {
	if token == nil {
		return ""
	}
	canonical, err := CanonicalBytes(token)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(hash[:])
}
