package attest

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Verifier authenticates capability tokens against a fixed trust-domain set
// and a key provider. It is stateless apart from that read-only
// configuration, so one instance is safe for concurrent use.
type Verifier struct {
	domains *core.DomainSet
	keys    core.KeyProvider
	clock   core.Clock
}

func NewVerifier(domains *core.DomainSet, keys core.KeyProvider, clock core.Clock) *Verifier {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Verifier{domains: domains, keys: keys, clock: clock}
}

// Verify runs the hard gates in order; the first failure short-circuits
// with verified=false and a note. Malformed input from an untrusted token
// takes the same fail path as a wrong signature: this method never panics
// and never returns an error.
//
// Gate order: issuer domain known, key encoding valid, key matches the
// domain trust root, signature valid, not future-dated, not expired,
// capability attested.
func (v *Verifier) Verify(token *core.CapabilityToken, expectedCapability string) core.VerificationResult {
	now := v.clock.Now()

	if token == nil {
		return fail(now, core.FailureAttestationInvalid, "no capability token presented")
	}

	domain := v.domains.ByID(token.IssuerDomain)
	if domain == nil {
		return fail(now, core.FailureAttestationInvalid,
			fmt.Sprintf("unknown issuer domain %q", token.IssuerDomain))
	}

	embedded, err := token.DecodePublicKey()
	if err != nil {
		return fail(now, core.FailureAttestationInvalid, "invalid key encoding")
	}

	root := v.keys.GetDomainTrustRoot(domain.ID)
	if root == nil {
		return fail(now, core.FailureAttestationInvalid,
			fmt.Sprintf("no trust root available for domain %q", domain.ID))
	}

	// A token signed by a key that is not its claimed domain's root is
	// rejected outright, even when the signature verifies against the
	// embedded key.
	if !bytes.Equal(embedded, root) {
		return fail(now, core.FailureKeyMismatch,
			fmt.Sprintf("issuer key does not match trust root of domain %q", domain.ID))
	}

	signature, err := token.DecodeSignature()
	if err != nil {
		return fail(now, core.FailureAttestationInvalid, "invalid signature encoding")
	}

	canonical, err := CanonicalBytes(token)
	if err != nil {
		return fail(now, core.FailureAttestationInvalid, "token not canonically encodable")
	}
	if !ed25519.Verify(root, canonical, signature) {
		return fail(now, core.FailureAttestationInvalid, "signature verification failed")
	}

	if now.Before(token.IssuedAt) {
		return fail(now, core.FailureAttestationInvalid, "token issued in the future")
	}
	// Expiry is exclusive: a token is valid strictly before its expiry
	// instant.
	if !now.Before(token.Expiry) {
		return fail(now, core.FailureAttestationInvalid, "token expired")
	}

	if !core.MatchCapability(token.Capability, expectedCapability) {
		return fail(now, core.FailureAttestationInvalid,
			fmt.Sprintf("token attests %q, not %q", token.Capability, expectedCapability))
	}

	return core.VerificationResult{
		Verified:   true,
		ProofType:  core.ProofCapabilityAttested,
		VerifiedAt: now,
	}
}

func fail(now time.Time, code core.FailureCode, note string) core.VerificationResult {
	return core.VerificationResult{
		Verified:   false,
		Code:       code,
		Notes:      []string{note},
		VerifiedAt: now,
	}
}
